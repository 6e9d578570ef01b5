package las

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// CurveStats summarizes one curve of one well.
type CurveStats struct {
	Min, Max      float64
	Mean, Std     float64
	P10, P50, P90 float64
	NullPct       float64
}

// WellStats summarizes one well for the project table.
type WellStats struct {
	Path       string
	Name       string
	UWI        string
	NCurves    int
	NSamples   int
	DepthStart float64
	DepthStop  float64
	DepthStep  float64
	Curves     map[string]CurveStats
	Err        error
}

// ProjectSummary aggregates well statistics across a project.
type ProjectSummary struct {
	NWells         int
	NValid         int
	DepthStartMin  float64
	DepthStopMax   float64
	DepthRangeMean float64
	// Per curve: wells carrying it, mean of well means, global extremes.
	CurveWells   map[string]int
	MeanOfMeans  map[string]float64
	StdOfMeans   map[string]float64
	GlobalMin    map[string]float64
	GlobalMax    map[string]float64
	CurveNames   []string // sorted by availability, descending
}

// ComputeWellStats computes per-curve statistics for one parsed well.
// When curves is non-empty only the named curves are summarized.
func ComputeWellStats(path string, f *File, curves []string) WellStats {
	ws := WellStats{
		Path:     path,
		NCurves:  len(f.Curves),
		NSamples: f.NSamples(),
		Curves:   map[string]CurveStats{},
	}
	if item := f.Well.Get("WELL"); item != nil {
		ws.Name = item.Value
	}
	if item := f.Well.Get("UWI"); item != nil {
		ws.UWI = item.Value
	}
	ws.DepthStart = f.Well.Float("STRT", math.NaN())
	ws.DepthStop = f.Well.Float("STOP", math.NaN())
	ws.DepthStep = f.Well.Float("STEP", math.NaN())

	want := map[string]bool{}
	for _, c := range curves {
		want[c] = true
	}

	for _, c := range f.Curves {
		if len(want) > 0 && !want[c.Mnem] {
			continue
		}
		var valid []float64
		for _, v := range c.Data {
			if !math.IsNaN(v) {
				valid = append(valid, v)
			}
		}
		if len(valid) == 0 {
			continue
		}
		sort.Float64s(valid)

		cs := CurveStats{
			Min:  valid[0],
			Max:  valid[len(valid)-1],
			Mean: stat.Mean(valid, nil),
			P10:  stat.Quantile(0.1, stat.Empirical, valid, nil),
			P50:  stat.Quantile(0.5, stat.Empirical, valid, nil),
			P90:  stat.Quantile(0.9, stat.Empirical, valid, nil),
		}
		cs.Std = math.Sqrt(stat.Variance(valid, nil))
		if len(c.Data) > 0 {
			cs.NullPct = 100 * float64(len(c.Data)-len(valid)) / float64(len(c.Data))
		}
		ws.Curves[c.Mnem] = cs
	}

	return ws
}

// Summarize aggregates per-well statistics into a project summary.
func Summarize(wells []WellStats) *ProjectSummary {
	s := &ProjectSummary{
		NWells:      len(wells),
		CurveWells:  map[string]int{},
		MeanOfMeans: map[string]float64{},
		StdOfMeans:  map[string]float64{},
		GlobalMin:   map[string]float64{},
		GlobalMax:   map[string]float64{},
	}
	s.DepthStartMin = math.Inf(1)
	s.DepthStopMax = math.Inf(-1)

	means := map[string][]float64{}
	var rangeSum float64
	var rangeN int

	for _, w := range wells {
		if w.Err != nil {
			continue
		}
		s.NValid++
		if !math.IsNaN(w.DepthStart) {
			s.DepthStartMin = math.Min(s.DepthStartMin, w.DepthStart)
		}
		if !math.IsNaN(w.DepthStop) {
			s.DepthStopMax = math.Max(s.DepthStopMax, w.DepthStop)
		}
		if !math.IsNaN(w.DepthStart) && !math.IsNaN(w.DepthStop) {
			rangeSum += w.DepthStop - w.DepthStart
			rangeN++
		}
		for name, cs := range w.Curves {
			s.CurveWells[name]++
			means[name] = append(means[name], cs.Mean)
			if cur, ok := s.GlobalMin[name]; !ok || cs.Min < cur {
				s.GlobalMin[name] = cs.Min
			}
			if cur, ok := s.GlobalMax[name]; !ok || cs.Max > cur {
				s.GlobalMax[name] = cs.Max
			}
		}
	}
	if rangeN > 0 {
		s.DepthRangeMean = rangeSum / float64(rangeN)
	}

	for name, m := range means {
		s.MeanOfMeans[name] = stat.Mean(m, nil)
		if len(m) > 1 {
			s.StdOfMeans[name] = math.Sqrt(stat.Variance(m, nil))
		}
	}

	for name := range s.CurveWells {
		s.CurveNames = append(s.CurveNames, name)
	}
	sort.Slice(s.CurveNames, func(i, j int) bool {
		a, b := s.CurveNames[i], s.CurveNames[j]
		if s.CurveWells[a] != s.CurveWells[b] {
			return s.CurveWells[a] > s.CurveWells[b]
		}
		return a < b
	})

	return s
}

// StatsToCSV writes the per-well statistics table as CSV, one row per
// well, one column group per curve present anywhere in the project.
func StatsToCSV(w io.Writer, wells []WellStats, curveNames []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"path", "name", "uwi", "depth_start", "depth_stop", "n_curves"}
	for _, c := range curveNames {
		for _, suffix := range []string{"min", "max", "mean", "std", "p10", "p50", "p90", "null_pct"} {
			header = append(header, fmt.Sprintf("%s_%s", c, suffix))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, well := range wells {
		row := []string{
			well.Path, well.Name, well.UWI,
			fmtF(well.DepthStart), fmtF(well.DepthStop),
			strconv.Itoa(well.NCurves),
		}
		for _, c := range curveNames {
			cs, ok := well.Curves[c]
			if !ok {
				row = append(row, "", "", "", "", "", "", "", "")
				continue
			}
			row = append(row,
				fmtF(cs.Min), fmtF(cs.Max), fmtF(cs.Mean), fmtF(cs.Std),
				fmtF(cs.P10), fmtF(cs.P50), fmtF(cs.P90), fmtF(cs.NullPct))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fmtF(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
