// Package climate analyzes gridded (time, lat, lon) series from
// classic NetCDF files: climatologies, anomalies, trends and
// area-weighted statistics.
package climate

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/san-kum/geoforge/internal/logger"
	"github.com/san-kum/geoforge/internal/ncdf"
)

var log = logger.ForComponent("climate")

// ErrNoVariable indicates no analyzable gridded variable was found.
var ErrNoVariable = errors.New("climate: no suitable data variable")

// Dataset is one gridded variable with decoded time and coordinate
// axes. Data is row-major (t, lat, lon).
type Dataset struct {
	Path     string
	VarName  string
	Units    string
	Data     []float64
	Time     []time.Time
	Years    []float64 // fractional years since the first sample
	Months   []int     // 1..12
	Lat, Lon []float64
	NT       int
	Warnings []string
}

// Open reads a NetCDF file and selects the named variable, or the
// first variable with three or more dimensions when name is empty.
func Open(path, name string) (*Dataset, error) {
	f, err := ncdf.Open(path)
	if err != nil {
		return nil, err
	}
	return FromFile(f, path, name)
}

// FromFile builds a Dataset view over an already-parsed file.
func FromFile(f *ncdf.File, path, name string) (*Dataset, error) {
	var v *ncdf.Var
	if name != "" {
		if v = f.Var(name); v == nil {
			return nil, fmt.Errorf("climate: variable %q not found", name)
		}
	} else {
		for i := range f.Vars {
			if len(f.Vars[i].Dims) >= 3 {
				v = &f.Vars[i]
				break
			}
		}
		if v == nil {
			return nil, ErrNoVariable
		}
		log.Info("auto-selected variable", "name", v.Name)
	}
	if len(v.Dims) < 3 {
		return nil, fmt.Errorf("climate: variable %q is not (time, lat, lon)", v.Name)
	}

	ds := &Dataset{Path: path, VarName: v.Name, Data: v.Data}
	if a := v.Attr("units"); a != nil {
		ds.Units = a.Str
	}

	shape := f.Shape(v)
	ds.NT = shape[0]

	axis := func(names ...string) []float64 {
		for _, n := range names {
			if av := f.Var(n); av != nil && len(av.Dims) == 1 {
				return av.Data
			}
		}
		return nil
	}
	ds.Lat = axis("lat", "latitude", "y")
	ds.Lon = axis("lon", "longitude", "x")
	if ds.Lat == nil || ds.Lon == nil {
		// Fall back to index coordinates of the trailing dims.
		ds.Lat = indexAxis(shape[1])
		ds.Lon = indexAxis(shape[2])
		ds.Warnings = append(ds.Warnings, "no lat/lon axes found, statistics are unweighted")
	}
	if len(ds.Data) != ds.NT*len(ds.Lat)*len(ds.Lon) {
		return nil, fmt.Errorf("climate: %q has %d values for shape %v", v.Name, len(ds.Data), shape)
	}

	ds.decodeTime(f)
	return ds, nil
}

func indexAxis(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

// decodeTime converts the time coordinate using its "unit since epoch"
// attribute; without one, indices count as years.
func (ds *Dataset) decodeTime(f *ncdf.File) {
	tv := f.Var("time")
	var units string
	if tv != nil {
		if a := tv.Attr("units"); a != nil {
			units = a.Str
		}
	}
	epoch, step, err := parseTimeUnits(units)
	if err != nil || tv == nil || len(tv.Data) < ds.NT {
		ds.Warnings = append(ds.Warnings, "missing or unparseable time units, using index years")
		ds.Time = nil
		ds.Years = make([]float64, ds.NT)
		ds.Months = make([]int, ds.NT)
		for i := 0; i < ds.NT; i++ {
			ds.Years[i] = float64(i)
			ds.Months[i] = i%12 + 1
		}
		return
	}

	ds.Time = make([]time.Time, ds.NT)
	ds.Years = make([]float64, ds.NT)
	ds.Months = make([]int, ds.NT)
	for i := 0; i < ds.NT; i++ {
		t := epoch.Add(time.Duration(tv.Data[i] * float64(step)))
		ds.Time[i] = t
		ds.Years[i] = ds.Time[i].Sub(ds.Time[0]).Hours() / 24 / 365.25
		ds.Months[i] = int(t.Month())
	}
}

// parseTimeUnits handles "days since 2000-01-01", "hours since
// 1900-01-01 00:00:00" and similar.
func parseTimeUnits(units string) (time.Time, time.Duration, error) {
	fields := strings.Fields(strings.ToLower(units))
	if len(fields) < 3 || fields[1] != "since" {
		return time.Time{}, 0, fmt.Errorf("climate: bad time units %q", units)
	}
	var step time.Duration
	switch fields[0] {
	case "days", "day":
		step = 24 * time.Hour
	case "hours", "hour":
		step = time.Hour
	case "minutes", "minute":
		step = time.Minute
	case "seconds", "second":
		step = time.Second
	default:
		return time.Time{}, 0, fmt.Errorf("climate: unknown time unit %q", fields[0])
	}
	stamp := strings.Join(fields[2:], " ")
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02t15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t, step, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("climate: bad epoch %q", stamp)
}

// At returns the value at (time, lat, lon) indices.
func (ds *Dataset) At(t, j, i int) float64 {
	return ds.Data[(t*len(ds.Lat)+j)*len(ds.Lon)+i]
}

func (ds *Dataset) cells() int { return len(ds.Lat) * len(ds.Lon) }

// Climatology returns 12 monthly mean maps, NaN-aware; months with no
// samples stay NaN.
func (ds *Dataset) Climatology() [12][]float64 {
	var out [12][]float64
	nc := ds.cells()
	counts := make([][]int, 12)
	for m := 0; m < 12; m++ {
		out[m] = make([]float64, nc)
		counts[m] = make([]int, nc)
	}
	for t := 0; t < ds.NT; t++ {
		m := ds.Months[t] - 1
		for c := 0; c < nc; c++ {
			v := ds.Data[t*nc+c]
			if math.IsNaN(v) {
				continue
			}
			out[m][c] += v
			counts[m][c]++
		}
	}
	for m := 0; m < 12; m++ {
		for c := 0; c < nc; c++ {
			if counts[m][c] == 0 {
				out[m][c] = math.NaN()
				continue
			}
			out[m][c] /= float64(counts[m][c])
		}
	}
	return out
}

// Anomalies subtracts the monthly climatology from every sample.
func (ds *Dataset) Anomalies() []float64 {
	clim := ds.Climatology()
	nc := ds.cells()
	out := make([]float64, len(ds.Data))
	for t := 0; t < ds.NT; t++ {
		m := ds.Months[t] - 1
		for c := 0; c < nc; c++ {
			out[t*nc+c] = ds.Data[t*nc+c] - clim[m][c]
		}
	}
	return out
}

// Trend fits a per-cell least-squares line against fractional years
// and returns the slope map (units per year). Cells with fewer than
// three valid samples are NaN.
func (ds *Dataset) Trend() []float64 {
	nc := ds.cells()
	out := make([]float64, nc)
	for c := 0; c < nc; c++ {
		var n, sx, sy, sxx, sxy float64
		for t := 0; t < ds.NT; t++ {
			v := ds.Data[t*nc+c]
			if math.IsNaN(v) {
				continue
			}
			x := ds.Years[t]
			n++
			sx += x
			sy += v
			sxx += x * x
			sxy += x * v
		}
		den := n*sxx - sx*sx
		if n < 3 || den == 0 {
			out[c] = math.NaN()
			continue
		}
		out[c] = (n*sxy - sx*sy) / den
	}
	return out
}

// WeightedMean returns the cos-latitude weighted spatial mean per time
// step, NaN-aware.
func (ds *Dataset) WeightedMean() []float64 {
	out := make([]float64, ds.NT)
	for t := 0; t < ds.NT; t++ {
		var sum, wsum float64
		for j := range ds.Lat {
			w := math.Cos(ds.Lat[j] * math.Pi / 180)
			if w <= 0 {
				w = 1e-12
			}
			for i := range ds.Lon {
				v := ds.At(t, j, i)
				if math.IsNaN(v) {
					continue
				}
				sum += w * v
				wsum += w
			}
		}
		if wsum == 0 {
			out[t] = math.NaN()
			continue
		}
		out[t] = sum / wsum
	}
	return out
}

var seasons = []struct {
	Name   string
	Months [3]int
}{
	{"DJF", [3]int{12, 1, 2}},
	{"MAM", [3]int{3, 4, 5}},
	{"JJA", [3]int{6, 7, 8}},
	{"SON", [3]int{9, 10, 11}},
}

// SeasonalMeans averages the weighted-mean series over the standard
// meteorological seasons.
func (ds *Dataset) SeasonalMeans() map[string]float64 {
	series := ds.WeightedMean()
	out := map[string]float64{}
	for _, season := range seasons {
		var sum float64
		n := 0
		for t := 0; t < ds.NT; t++ {
			in := false
			for _, m := range season.Months {
				if ds.Months[t] == m {
					in = true
					break
				}
			}
			if !in || math.IsNaN(series[t]) {
				continue
			}
			sum += series[t]
			n++
		}
		if n == 0 {
			out[season.Name] = math.NaN()
			continue
		}
		out[season.Name] = sum / float64(n)
	}
	return out
}

// Stats holds NaN-aware global statistics.
type Stats struct {
	Mean, Std, Min, Max float64
	NaNCount            int
}

// GlobalStats computes unweighted statistics over every sample.
func (ds *Dataset) GlobalStats() Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sum2 float64
	n := 0
	for _, v := range ds.Data {
		if math.IsNaN(v) {
			s.NaNCount++
			continue
		}
		sum += v
		sum2 += v * v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		n++
	}
	if n == 0 {
		return Stats{Mean: math.NaN(), Std: math.NaN(), Min: math.NaN(), Max: math.NaN(), NaNCount: s.NaNCount}
	}
	s.Mean = sum / float64(n)
	s.Std = math.Sqrt(math.Max(sum2/float64(n)-s.Mean*s.Mean, 0))
	return s
}
