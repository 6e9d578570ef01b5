package las

import (
	"fmt"
	"math"
)

// CurveQC holds the per-curve portion of a QC report.
type CurveQC struct {
	Mnem      string
	Unit      string
	Samples   int
	NullCount int
	NullPct   float64
	Min, Max  float64
	Mean, Std float64
	NGaps     int
}

// QCReport extends the validation report with per-curve statistics and
// range heuristics.
type QCReport struct {
	Valid      bool
	Errors     []string
	Warnings   []string
	WellName   string
	UWI        string
	DepthStart float64
	DepthStop  float64
	DepthStep  float64
	Curves     []CurveQC
}

// suspicious value ranges for common curves.
var curveRanges = map[string][2]float64{
	"GR":   {0, 300},
	"NPHI": {-0.15, 1},
	"RHOB": {1.5, 3.5},
}

// QC computes per-curve statistics and flags constant curves, heavy null
// fractions, out-of-range values and gappy data.
func QC(f *File) *QCReport {
	rep := &QCReport{Valid: true}

	if item := f.Well.Get("WELL"); item != nil {
		rep.WellName = item.Value
	}
	if item := f.Well.Get("UWI"); item != nil {
		rep.UWI = item.Value
	}
	rep.DepthStart = f.Well.Float("STRT", math.NaN())
	rep.DepthStop = f.Well.Float("STOP", math.NaN())
	rep.DepthStep = f.Well.Float("STEP", math.NaN())

	if len(f.Curves) == 0 {
		rep.Valid = false
		rep.Errors = append(rep.Errors, "No curves in well")
		return rep
	}

	for _, c := range f.Curves {
		cq := CurveQC{Mnem: c.Mnem, Unit: c.Unit, Samples: len(c.Data)}
		if cq.Unit == "" {
			cq.Unit = "Unknown"
		}

		var valid []float64
		inGap := false
		for _, v := range c.Data {
			if math.IsNaN(v) {
				cq.NullCount++
				if !inGap {
					cq.NGaps++
					inGap = true
				}
				continue
			}
			inGap = false
			valid = append(valid, v)
		}
		if cq.Samples > 0 {
			cq.NullPct = 100 * float64(cq.NullCount) / float64(cq.Samples)
		}
		if cq.NullPct > 20 {
			rep.Warnings = append(rep.Warnings,
				warnf("Curve %s: %.1f%% null values", c.Mnem, cq.NullPct))
		}

		if len(valid) > 0 {
			cq.Min, cq.Max = valid[0], valid[0]
			sum := 0.0
			for _, v := range valid {
				cq.Min = math.Min(cq.Min, v)
				cq.Max = math.Max(cq.Max, v)
				sum += v
			}
			cq.Mean = sum / float64(len(valid))
			ss := 0.0
			for _, v := range valid {
				d := v - cq.Mean
				ss += d * d
			}
			cq.Std = math.Sqrt(ss / float64(len(valid)))

			if cq.Std == 0 {
				rep.Warnings = append(rep.Warnings,
					warnf("Curve %s: constant value (%g)", c.Mnem, valid[0]))
			}
			if r, ok := curveRanges[c.Mnem]; ok && (cq.Min < r[0] || cq.Max > r[1]) {
				rep.Warnings = append(rep.Warnings,
					warnf("Curve %s: suspicious range (%.4g - %.4g)", c.Mnem, cq.Min, cq.Max))
			}
		} else {
			cq.Min, cq.Max = math.NaN(), math.NaN()
			cq.Mean, cq.Std = math.NaN(), math.NaN()
		}

		if cq.NGaps > 5 {
			rep.Warnings = append(rep.Warnings,
				warnf("Curve %s: %d gaps in data", c.Mnem, cq.NGaps))
		}

		rep.Curves = append(rep.Curves, cq)
	}

	return rep
}

func warnf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
