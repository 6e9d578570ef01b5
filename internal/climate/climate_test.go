package climate

import (
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/geoforge/internal/ncdf"
)

// sample builds two full years of monthly data on a 2x2 grid:
// v(t, j, i) = 10 + 2*years + 10*j, mid-month time stamps.
func sample(t *testing.T) *Dataset {
	t.Helper()
	f := &ncdf.File{}
	dTime := f.AddDim("time", 24, true)
	dLat := f.AddDim("lat", 2, false)
	dLon := f.AddDim("lon", 2, false)

	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]float64, 24)
	for i := range times {
		stamp := time.Date(2000+i/12, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC)
		times[i] = stamp.Sub(epoch).Hours() / 24
	}

	data := make([]float64, 24*4)
	for i := range times {
		years := (times[i] - times[0]) / 365.25
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				data[(i*2+j)*2+k] = 10 + 2*years + 10*float64(j)
			}
		}
	}

	f.Vars = []ncdf.Var{
		{Name: "lat", Dims: []int{dLat}, Type: ncdf.Double, Data: []float64{0, 60}},
		{Name: "lon", Dims: []int{dLon}, Type: ncdf.Double, Data: []float64{0, 180}},
		{Name: "tas", Dims: []int{dTime, dLat, dLon}, Type: ncdf.Double, Data: data,
			Attrs: []ncdf.Attr{{Name: "units", Type: ncdf.Char, Str: "K"}}},
		{Name: "time", Dims: []int{dTime}, Type: ncdf.Double, Data: times,
			Attrs: []ncdf.Attr{{Name: "units", Type: ncdf.Char, Str: "days since 2000-01-01"}}},
	}

	ds, err := FromFile(f, "sample.nc", "")
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestOpenAndDecode(t *testing.T) {
	ds := sample(t)
	if ds.VarName != "tas" || ds.NT != 24 {
		t.Fatalf("var = %s, nt = %d", ds.VarName, ds.NT)
	}
	if ds.Months[0] != 1 || ds.Months[13] != 2 {
		t.Errorf("months = %v", ds.Months[:14])
	}
	if math.Abs(ds.Years[12]-366.0/365.25) > 1e-9 {
		t.Errorf("years[12] = %f", ds.Years[12])
	}
	if len(ds.Warnings) != 0 {
		t.Errorf("warnings = %v", ds.Warnings)
	}
}

func TestTrend(t *testing.T) {
	ds := sample(t)
	trend := ds.Trend()
	for c, v := range trend {
		if math.Abs(v-2) > 1e-9 {
			t.Errorf("trend[%d] = %f, want 2", c, v)
		}
	}

	// Too few samples leaves NaN.
	for i := 2; i < ds.NT; i++ {
		ds.Data[i*4] = math.NaN()
	}
	if v := ds.Trend()[0]; !math.IsNaN(v) {
		t.Errorf("sparse cell trend = %f, want NaN", v)
	}
}

func TestClimatologyAndAnomalies(t *testing.T) {
	ds := sample(t)
	clim := ds.Climatology()
	// January mean at cell 0: average of the two January samples.
	want := (ds.At(0, 0, 0) + ds.At(12, 0, 0)) / 2
	if math.Abs(clim[0][0]-want) > 1e-9 {
		t.Errorf("jan climatology = %f, want %f", clim[0][0], want)
	}

	anom := ds.Anomalies()
	// Anomalies of a pair are symmetric about their mean.
	if math.Abs(anom[0]+anom[12*4]) > 1e-9 {
		t.Errorf("anomaly pair = %f, %f", anom[0], anom[12*4])
	}
	// Anomaly magnitude is half the year-over-year change.
	half := (ds.At(12, 0, 0) - ds.At(0, 0, 0)) / 2
	if math.Abs(anom[0]+half) > 1e-9 {
		t.Errorf("anomaly = %f, want %f", anom[0], -half)
	}
}

func TestWeightedMean(t *testing.T) {
	ds := sample(t)
	series := ds.WeightedMean()
	// Rows at lat 0 (weight 1) and lat 60 (weight 0.5) with a +10
	// offset on the second row: offset contribution is 10/3.
	base := ds.At(0, 0, 0)
	if math.Abs(series[0]-(base+10.0/3)) > 1e-9 {
		t.Errorf("weighted mean = %f, want %f", series[0], base+10.0/3)
	}
}

func TestSeasonalMeans(t *testing.T) {
	ds := sample(t)
	seasonal := ds.SeasonalMeans()
	for _, name := range []string{"DJF", "MAM", "JJA", "SON"} {
		if math.IsNaN(seasonal[name]) {
			t.Errorf("%s is NaN", name)
		}
	}
	// With a pure warming trend the late seasons sit above DJF.
	if seasonal["SON"] <= seasonal["MAM"] {
		t.Errorf("SON %f <= MAM %f", seasonal["SON"], seasonal["MAM"])
	}
}

func TestGlobalStats(t *testing.T) {
	ds := sample(t)
	ds.Data[5] = math.NaN()
	st := ds.GlobalStats()
	if st.NaNCount != 1 {
		t.Errorf("nan count = %d", st.NaNCount)
	}
	if st.Min < 10 || st.Max > 10+2*2.1+10 {
		t.Errorf("range = %f..%f", st.Min, st.Max)
	}
}

func TestMissingTimeUnits(t *testing.T) {
	f := &ncdf.File{}
	dTime := f.AddDim("time", 3, false)
	dLat := f.AddDim("lat", 1, false)
	dLon := f.AddDim("lon", 1, false)
	f.Vars = []ncdf.Var{
		{Name: "lat", Dims: []int{dLat}, Type: ncdf.Double, Data: []float64{0}},
		{Name: "lon", Dims: []int{dLon}, Type: ncdf.Double, Data: []float64{0}},
		{Name: "v", Dims: []int{dTime, dLat, dLon}, Type: ncdf.Double, Data: []float64{1, 2, 3}},
	}
	ds, err := FromFile(f, "x.nc", "v")
	if err != nil {
		t.Fatal(err)
	}
	if len(ds.Warnings) == 0 || ds.Years[2] != 2 {
		t.Errorf("fallback years = %v, warnings = %v", ds.Years, ds.Warnings)
	}
}

func TestWriteOutputs(t *testing.T) {
	ds := sample(t)
	dir := t.TempDir()

	trendPath := filepath.Join(dir, "trend.nc")
	if err := ds.WriteTrendNC(trendPath); err != nil {
		t.Fatal(err)
	}
	back, err := ncdf.Open(trendPath)
	if err != nil {
		t.Fatal(err)
	}
	tv := back.Var("tas_trend")
	if tv == nil || math.Abs(tv.Data[0]-2) > 1e-9 {
		t.Fatalf("trend round trip: %+v", tv)
	}
	if a := tv.Attr("units"); a == nil || a.Str != "K/year" {
		t.Errorf("units attr = %+v", a)
	}

	climPath := filepath.Join(dir, "clim.nc")
	if err := ds.WriteClimatologyNC(climPath); err != nil {
		t.Fatal(err)
	}
	back, err = ncdf.Open(climPath)
	if err != nil {
		t.Fatal(err)
	}
	cv := back.Var("tas_climatology")
	if cv == nil || len(cv.Data) != 12*4 {
		t.Fatalf("climatology round trip: %+v", cv)
	}
}

func TestReportAndPlot(t *testing.T) {
	ds := sample(t)
	var b strings.Builder
	ds.WriteReport(&b)
	out := b.String()
	if !strings.Contains(out, "Variable: tas") || !strings.Contains(out, "Seasonal means") {
		t.Errorf("report:\n%s", out)
	}
	if ds.SeriesASCII() == "" {
		t.Error("empty ascii series")
	}
}
