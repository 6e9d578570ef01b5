package las

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Merge outer-joins curves from several files on their depth curve. The
// first file wins on curve-name conflicts and supplies the well section.
// When step > 0 the merged log is resampled to a uniform depth step by
// linear interpolation, NaN outside each curve's support. depthCurve may
// be empty to auto-detect.
func Merge(files []*File, step float64, depthCurve string) (*File, error) {
	if len(files) == 0 {
		return nil, ErrNoData
	}

	depthIdx := 0
	if depthCurve != "" {
		found := false
		for i := range files[0].Curves {
			if files[0].Curves[i].Mnem == depthCurve {
				depthIdx, found = i, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("las: depth curve %s not in first file", depthCurve)
		}
	} else if idx, ok := files[0].DepthCurve(); ok {
		depthIdx = idx
	}
	depthName := files[0].Curves[depthIdx].Mnem

	// Union of depths across all files.
	depthSet := map[float64]bool{}
	for _, f := range files {
		dc := f.Curve(depthName)
		if dc == nil {
			return nil, fmt.Errorf("las: depth curve %s missing in merged file", depthName)
		}
		for _, d := range dc.Data {
			if !math.IsNaN(d) {
				depthSet[d] = true
			}
		}
	}
	depths := make([]float64, 0, len(depthSet))
	for d := range depthSet {
		depths = append(depths, d)
	}
	sort.Float64s(depths)
	if len(depths) == 0 {
		return nil, ErrNoData
	}

	out := &File{}
	out.Version.Set("VERS", "", "2.0", "CWLS log ASCII standard")
	out.Version.Set("WRAP", "", "NO", "one line per depth step")
	out.Well.Items = append(out.Well.Items, files[0].Well.Items...)

	out.Curves = append(out.Curves, Curve{
		Mnem: depthName,
		Unit: files[0].Curves[depthIdx].Unit,
		Data: depths,
	})

	// First occurrence of each curve wins.
	for _, f := range files {
		dc := f.Curve(depthName)
		for i := range f.Curves {
			c := &f.Curves[i]
			if c.Mnem == depthName || out.Curve(c.Mnem) != nil {
				continue
			}
			data := make([]float64, len(depths))
			byDepth := map[float64]float64{}
			for r, d := range dc.Data {
				if !math.IsNaN(d) {
					byDepth[d] = c.Data[r]
				}
			}
			for j, d := range depths {
				if v, ok := byDepth[d]; ok {
					data[j] = v
				} else {
					data[j] = math.NaN()
				}
			}
			out.Curves = append(out.Curves, Curve{Mnem: c.Mnem, Unit: c.Unit, Descr: c.Descr, Data: data})
		}
	}

	if step > 0 {
		resample(out, step)
	}

	final := out.Curves[0].Data
	stepVal := 0.0
	if len(final) > 1 {
		stepVal = final[1] - final[0]
	}
	out.Well.Set("STRT", out.Curves[0].Unit, strconv.FormatFloat(final[0], 'f', 4, 64), "start depth")
	out.Well.Set("STOP", out.Curves[0].Unit, strconv.FormatFloat(final[len(final)-1], 'f', 4, 64), "stop depth")
	out.Well.Set("STEP", out.Curves[0].Unit, strconv.FormatFloat(stepVal, 'f', 4, 64), "step")
	if out.Well.Get("NULL") == nil {
		out.Well.Set("NULL", "", strconv.FormatFloat(DefaultNull, 'f', 2, 64), "null value")
	}

	return out, nil
}

// resample replaces the depth axis by a uniform grid and linearly
// interpolates every other curve onto it.
func resample(f *File, step float64) {
	oldDepth := f.Curves[0].Data
	lo, hi := oldDepth[0], oldDepth[len(oldDepth)-1]

	var newDepth []float64
	for d := lo; d <= hi+step/2; d += step {
		newDepth = append(newDepth, d)
	}

	for i := 1; i < len(f.Curves); i++ {
		f.Curves[i].Data = interpNaN(newDepth, oldDepth, f.Curves[i].Data)
	}
	f.Curves[0].Data = newDepth
}

// interpNaN linearly interpolates y(xOld) onto xNew, skipping NaN samples
// and returning NaN outside the valid support.
func interpNaN(xNew, xOld, y []float64) []float64 {
	var xs, ys []float64
	for i := range xOld {
		if !math.IsNaN(y[i]) {
			xs = append(xs, xOld[i])
			ys = append(ys, y[i])
		}
	}
	out := make([]float64, len(xNew))
	for i, x := range xNew {
		out[i] = interp1(x, xs, ys)
	}
	return out
}

func interp1(x float64, xs, ys []float64) float64 {
	if len(xs) == 0 || x < xs[0] || x > xs[len(xs)-1] {
		return math.NaN()
	}
	j := sort.SearchFloat64s(xs, x)
	if j < len(xs) && xs[j] == x {
		return ys[j]
	}
	lo, hi := j-1, j
	t := (x - xs[lo]) / (xs[hi] - xs[lo])
	return ys[lo] + t*(ys[hi]-ys[lo])
}
