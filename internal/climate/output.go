package climate

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/geoforge/internal/ncdf"
	"github.com/san-kum/geoforge/internal/plot"
)

// gridFile builds a NetCDF file with the dataset's lat/lon axes plus
// the given variables (each a lat*lon map, or 12 monthly maps).
func (ds *Dataset) gridFile(extraDim *ncdf.Dim) *ncdf.File {
	f := &ncdf.File{}
	if extraDim != nil {
		f.AddDim(extraDim.Name, extraDim.Len, false)
	}
	dLat := f.AddDim("lat", len(ds.Lat), false)
	dLon := f.AddDim("lon", len(ds.Lon), false)
	f.Vars = append(f.Vars,
		ncdf.Var{Name: "lat", Dims: []int{dLat}, Type: ncdf.Double, Data: ds.Lat,
			Attrs: []ncdf.Attr{{Name: "units", Type: ncdf.Char, Str: "degrees_north"}}},
		ncdf.Var{Name: "lon", Dims: []int{dLon}, Type: ncdf.Double, Data: ds.Lon,
			Attrs: []ncdf.Attr{{Name: "units", Type: ncdf.Char, Str: "degrees_east"}}},
	)
	return f
}

// WriteTrendNC saves the per-cell trend map.
func (ds *Dataset) WriteTrendNC(path string) error {
	f := ds.gridFile(nil)
	f.Vars = append(f.Vars, ncdf.Var{
		Name: ds.VarName + "_trend",
		Dims: []int{f.DimIndex("lat"), f.DimIndex("lon")},
		Type: ncdf.Double,
		Data: ds.Trend(),
		Attrs: []ncdf.Attr{
			{Name: "units", Type: ncdf.Char, Str: ds.Units + "/year"},
			{Name: "long_name", Type: ncdf.Char, Str: "Linear trend of " + ds.VarName},
		},
	})
	return ncdf.Write(path, f)
}

// WriteClimatologyNC saves the 12 monthly mean maps as a
// (month, lat, lon) variable.
func (ds *Dataset) WriteClimatologyNC(path string) error {
	f := ds.gridFile(&ncdf.Dim{Name: "month", Len: 12})
	clim := ds.Climatology()
	data := make([]float64, 0, 12*ds.cells())
	for m := 0; m < 12; m++ {
		data = append(data, clim[m]...)
	}
	f.Vars = append(f.Vars, ncdf.Var{
		Name: ds.VarName + "_climatology",
		Dims: []int{f.DimIndex("month"), f.DimIndex("lat"), f.DimIndex("lon")},
		Type: ncdf.Double,
		Data: data,
	})
	return ncdf.Write(path, f)
}

// WriteAnomaliesNC saves the anomaly cube with the original time axis
// carried over as a plain index when no calendar was decoded.
func (ds *Dataset) WriteAnomaliesNC(path string) error {
	f := &ncdf.File{}
	dTime := f.AddDim("time", ds.NT, false)
	dLat := f.AddDim("lat", len(ds.Lat), false)
	dLon := f.AddDim("lon", len(ds.Lon), false)
	f.Vars = append(f.Vars,
		ncdf.Var{Name: "time", Dims: []int{dTime}, Type: ncdf.Double, Data: ds.Years,
			Attrs: []ncdf.Attr{{Name: "units", Type: ncdf.Char, Str: "years since start"}}},
		ncdf.Var{Name: "lat", Dims: []int{dLat}, Type: ncdf.Double, Data: ds.Lat},
		ncdf.Var{Name: "lon", Dims: []int{dLon}, Type: ncdf.Double, Data: ds.Lon},
		ncdf.Var{Name: ds.VarName + "_anomaly", Dims: []int{dTime, dLat, dLon},
			Type: ncdf.Double, Data: ds.Anomalies()},
	)
	return ncdf.Write(path, f)
}

// WriteReport prints the analysis summary.
func (ds *Dataset) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "\n%s\nClimate Analysis Results\n%s\n", strings.Repeat("=", 60), strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nFile: %s\nVariable: %s\n", ds.Path, ds.VarName)
	fmt.Fprintf(w, "\nDataset Info:\n")
	fmt.Fprintf(w, "  Dimensions: time=%d lat=%d lon=%d\n", ds.NT, len(ds.Lat), len(ds.Lon))
	if len(ds.Time) > 0 {
		fmt.Fprintf(w, "  Time range: %s to %s\n",
			ds.Time[0].Format("2006-01-02"), ds.Time[ds.NT-1].Format("2006-01-02"))
	}
	fmt.Fprintf(w, "  Latitude range: %.2f to %.2f\n", minOf(ds.Lat), maxOf(ds.Lat))
	fmt.Fprintf(w, "  Longitude range: %.2f to %.2f\n", minOf(ds.Lon), maxOf(ds.Lon))

	st := ds.GlobalStats()
	fmt.Fprintf(w, "\nStatistics:\n")
	fmt.Fprintf(w, "  Global mean: %.4f\n  Global std:  %.4f\n", st.Mean, st.Std)
	fmt.Fprintf(w, "  Global min:  %.4f\n  Global max:  %.4f\n", st.Min, st.Max)
	if st.NaNCount > 0 {
		fmt.Fprintf(w, "  Missing samples: %d\n", st.NaNCount)
	}

	series := ds.WeightedMean()
	var mean, std float64
	n := 0
	for _, v := range series {
		if !math.IsNaN(v) {
			mean += v
			n++
		}
	}
	if n > 0 {
		mean /= float64(n)
		for _, v := range series {
			if !math.IsNaN(v) {
				std += (v - mean) * (v - mean)
			}
		}
		std = math.Sqrt(std / float64(n))
	}
	fmt.Fprintf(w, "\n  Area-weighted time series mean: %.4f\n", mean)
	fmt.Fprintf(w, "  Area-weighted time series std:  %.4f\n", std)

	fmt.Fprintf(w, "\nSeasonal means:\n")
	seasonal := ds.SeasonalMeans()
	for _, season := range seasons {
		fmt.Fprintf(w, "  %s: %.4f\n", season.Name, seasonal[season.Name])
	}

	for _, warning := range ds.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
}

// SeriesASCII plots the weighted-mean series in the terminal.
func (ds *Dataset) SeriesASCII() string {
	return plot.Series(ds.WeightedMean(), "area-weighted mean of "+ds.VarName)
}

func minOf(v []float64) float64 {
	out := math.Inf(1)
	for _, x := range v {
		out = math.Min(out, x)
	}
	return out
}

func maxOf(v []float64) float64 {
	out := math.Inf(-1)
	for _, x := range v {
		out = math.Max(out, x)
	}
	return out
}
