package segy

import (
	"math"
)

// Geometry summarizes a header scan over a sample of traces.
type Geometry struct {
	InlineMin, InlineMax int32
	XlineMin, XlineMax   int32
	UniqueInlines        int
	UniqueXlines         int
	CDPXMin, CDPXMax     int32
	CDPYMin, CDPYMax     int32
	OffsetMin, OffsetMax int32
	Scalar               int16
	HasInlines           bool
	HasCDP               bool
	HasOffsets           bool
	Scanned              int
}

// DataStats summarizes sample values of the first and last trace.
type DataStats struct {
	Min, Max, Mean float64
	HasNaN         bool
}

// maxScanTraces caps the header scan, matching the original tool.
const maxScanTraces = 1000

// ScanGeometry samples up to 1000 trace headers evenly across the file
// and reports inline/crossline/CDP/offset ranges and unique counts.
func (r *Reader) ScanGeometry() (*Geometry, error) {
	if r.TraceCount == 0 {
		return &Geometry{}, nil
	}

	step := 1
	if r.TraceCount > maxScanTraces {
		step = r.TraceCount / maxScanTraces
	}

	g := &Geometry{
		InlineMin: math.MaxInt32, XlineMin: math.MaxInt32,
		CDPXMin: math.MaxInt32, CDPYMin: math.MaxInt32,
		OffsetMin: math.MaxInt32,
		InlineMax: math.MinInt32, XlineMax: math.MinInt32,
		CDPXMax: math.MinInt32, CDPYMax: math.MinInt32,
		OffsetMax: math.MinInt32,
	}
	inlines := map[int32]bool{}
	xlines := map[int32]bool{}

	for i := 0; i < r.TraceCount; i += step {
		if g.Scanned >= maxScanTraces {
			break
		}
		h, err := r.ReadHeader(i)
		if err != nil {
			return nil, err
		}
		g.Scanned++
		if g.Scanned == 1 {
			g.Scalar = h.Scalar
		}

		if h.Inline != 0 || h.Xline != 0 {
			g.HasInlines = true
		}
		if h.CDPX != 0 || h.CDPY != 0 {
			g.HasCDP = true
		}
		if h.Offset != 0 {
			g.HasOffsets = true
		}

		inlines[h.Inline] = true
		xlines[h.Xline] = true
		g.InlineMin = min32(g.InlineMin, h.Inline)
		g.InlineMax = max32(g.InlineMax, h.Inline)
		g.XlineMin = min32(g.XlineMin, h.Xline)
		g.XlineMax = max32(g.XlineMax, h.Xline)
		g.CDPXMin = min32(g.CDPXMin, h.CDPX)
		g.CDPXMax = max32(g.CDPXMax, h.CDPX)
		g.CDPYMin = min32(g.CDPYMin, h.CDPY)
		g.CDPYMax = max32(g.CDPYMax, h.CDPY)
		g.OffsetMin = min32(g.OffsetMin, h.Offset)
		g.OffsetMax = max32(g.OffsetMax, h.Offset)
	}

	g.UniqueInlines = len(inlines)
	g.UniqueXlines = len(xlines)
	return g, nil
}

// TraceStats computes min/max/mean over the first and last trace.
func (r *Reader) TraceStats() (*DataStats, error) {
	if r.TraceCount == 0 {
		return &DataStats{}, nil
	}
	first, err := r.ReadTrace(0)
	if err != nil {
		return nil, err
	}
	last, err := r.ReadTrace(r.TraceCount - 1)
	if err != nil {
		return nil, err
	}

	s := &DataStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	var n int
	for _, trace := range [][]float64{first, last} {
		for _, v := range trace {
			if math.IsNaN(v) {
				s.HasNaN = true
				continue
			}
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
			sum += v
			n++
		}
	}
	if n > 0 {
		s.Mean = sum / float64(n)
	}
	return s, nil
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
