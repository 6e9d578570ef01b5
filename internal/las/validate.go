package las

import (
	"fmt"
	"math"
)

// Report collects validation findings for one file.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string
	Version  string
	NCurves  int
	NSamples int
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks a parsed file against the LAS 2.0 conventions:
// required well items, a standard depth curve, depth monotonicity,
// heavily-null curves, duplicate mnemonics and missing units.
func Validate(f *File) *Report {
	rep := &Report{Valid: true, NCurves: len(f.Curves), NSamples: f.NSamples()}

	if vers := f.Version.Get("VERS"); vers != nil {
		rep.Version = vers.Value
	} else {
		rep.Version = "Unknown"
	}

	for _, required := range []string{"STRT", "STOP", "STEP", "NULL", "WELL"} {
		if f.Well.Get(required) == nil {
			rep.warnf("Missing required header: %s", required)
		}
	}

	if rep.NSamples == 0 {
		rep.errorf("No data in file")
		return rep
	}

	if _, ok := f.DepthCurve(); !ok {
		rep.warnf("No standard depth curve found. First curve: %s", f.Curves[0].Mnem)
	}

	depth := f.Curves[0].Data
	increasing, decreasing := true, true
	for i := 1; i < len(depth); i++ {
		d := depth[i] - depth[i-1]
		if d <= 0 {
			increasing = false
		}
		if d >= 0 {
			decreasing = false
		}
	}
	if len(depth) > 1 && !increasing && !decreasing {
		rep.warnf("Depth values are not monotonic")
	}

	for _, c := range f.Curves {
		nulls := 0
		for _, v := range c.Data {
			if math.IsNaN(v) {
				nulls++
			}
		}
		if len(c.Data) > 0 {
			pct := 100 * float64(nulls) / float64(len(c.Data))
			if pct > 50 {
				rep.warnf("Curve %s: %.1f%% null values", c.Mnem, pct)
			}
		}
	}

	seen := map[string]bool{}
	for _, c := range f.Curves {
		if seen[c.Mnem] {
			rep.warnf("Duplicate curve name: %s", c.Mnem)
		}
		seen[c.Mnem] = true
	}

	for _, c := range f.Curves {
		if c.Unit == "" {
			rep.warnf("Curve %s has no unit", c.Mnem)
		}
	}

	return rep
}
