package segy

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a half-open [Start, End) selection; either end may be open.
type Range struct {
	Start, End       int
	HasStart, HasEnd bool
}

// ParseRange parses "a:b", "a:", ":b" or a single index "a" (one element).
func ParseRange(s string) (Range, error) {
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return Range{}, fmt.Errorf("segy: bad range %q", s)
		}
		return Range{Start: v, End: v + 1, HasStart: true, HasEnd: true}, nil
	case 2:
		var r Range
		if parts[0] != "" {
			v, err := strconv.Atoi(parts[0])
			if err != nil {
				return Range{}, fmt.Errorf("segy: bad range %q", s)
			}
			r.Start, r.HasStart = v, true
		}
		if parts[1] != "" {
			v, err := strconv.Atoi(parts[1])
			if err != nil {
				return Range{}, fmt.Errorf("segy: bad range %q", s)
			}
			r.End, r.HasEnd = v, true
		}
		return r, nil
	}
	return Range{}, fmt.Errorf("segy: bad range %q", s)
}

func (r Range) contains(v int) bool {
	if r.HasStart && v < r.Start {
		return false
	}
	if r.HasEnd && v >= r.End {
		return false
	}
	return true
}

// ExtractOptions selects the subset to copy.
type ExtractOptions struct {
	Traces  *Range // trace index range
	Inlines *Range // 3D inline range, header-scan selection
	Xlines  *Range // 3D crossline range
	Time    *Range // time window in ms
}

// Extract copies the selected traces (and optionally a time window of
// each) into a new file, preserving the textual header and binary header
// apart from the updated sample count.
func Extract(src *Reader, dstPath string, opts ExtractOptions) (int, error) {
	// Resolve trace selection.
	var selected []int
	if opts.Inlines != nil || opts.Xlines != nil {
		for i := 0; i < src.TraceCount; i++ {
			h, err := src.ReadHeader(i)
			if err != nil {
				return 0, err
			}
			if opts.Inlines != nil && !opts.Inlines.contains(int(h.Inline)) {
				continue
			}
			if opts.Xlines != nil && !opts.Xlines.contains(int(h.Xline)) {
				continue
			}
			selected = append(selected, i)
		}
	} else {
		r := Range{}
		if opts.Traces != nil {
			r = *opts.Traces
		}
		for i := 0; i < src.TraceCount; i++ {
			if r.contains(i) {
				selected = append(selected, i)
			}
		}
	}
	if len(selected) == 0 {
		return 0, fmt.Errorf("segy: selection matches no traces")
	}

	// Resolve the sample window from the time range.
	sampleLo, sampleHi := 0, src.Bin.Samples // [lo, hi)
	if opts.Time != nil {
		dtMs := float64(src.Bin.Interval) / 1000
		if dtMs <= 0 {
			return 0, fmt.Errorf("segy: no sample interval, cannot apply time window")
		}
		sampleLo, sampleHi = 0, 0
		seen := false
		for i := 0; i < src.Bin.Samples; i++ {
			t := int(float64(i) * dtMs)
			if opts.Time.contains(t) {
				if !seen {
					sampleLo = i
					seen = true
				}
				sampleHi = i + 1
			}
		}
		if !seen {
			return 0, fmt.Errorf("segy: time window selects no samples")
		}
	}
	nSamples := sampleHi - sampleLo

	dst, err := Create(dstPath, Spec{
		RawText: src.RawText,
		RawBin:  src.RawBin,
		Samples: nSamples,
		Format:  src.Bin.Format,
	})
	if err != nil {
		return 0, err
	}

	for _, idx := range selected {
		hdr, err := src.ReadRawHeader(idx)
		if err != nil {
			dst.Close()
			return dst.Written(), err
		}
		trace, err := src.ReadTrace(idx)
		if err != nil {
			dst.Close()
			return dst.Written(), err
		}
		if err := dst.WriteTrace(hdr, trace[sampleLo:sampleHi]); err != nil {
			dst.Close()
			return dst.Written(), err
		}
	}

	return dst.Written(), dst.Close()
}
