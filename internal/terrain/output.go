package terrain

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/vtk"
)

// WriteEsriASCII writes one node field as an ESRI ASCII grid, rows
// from the top edge down as the format requires.
func WriteEsriASCII(w io.Writer, g *Grid, values []float64) error {
	if len(values) != len(g.Z) {
		return fmt.Errorf("terrain: field has %d values for %d nodes", len(values), len(g.Z))
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner 0.0\n")
	fmt.Fprintf(bw, "yllcorner 0.0\n")
	fmt.Fprintf(bw, "cellsize %g\n", g.DX)
	fmt.Fprintf(bw, "NODATA_value -9999\n")
	for r := g.Rows - 1; r >= 0; r-- {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				fmt.Fprint(bw, " ")
			}
			fmt.Fprintf(bw, "%g", values[g.Index(r, c)])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteVTK exports elevation, drainage area and slope as a
// structured-points dataset.
func WriteVTK(w io.Writer, g *Grid, f *Flow) error {
	scalars := []vtk.Scalars{
		{Name: "elevation", Data: g.Z},
		{Name: "drainage_area", Data: f.Area},
		{Name: "slope", Data: g.SlopeMap()},
	}
	return vtk.WriteStructuredPoints(w, "landscape evolution output",
		g.Cols, g.Rows, 1, [3]float64{0, 0, 0}, [3]float64{g.DX, g.DX, 1}, scalars)
}

// WriteSeriesCSV writes the recorded per-step time series.
func WriteSeriesCSV(w io.Writer, dt float64, res *Result) error {
	if _, err := fmt.Fprintln(w, "time_years,mean_elevation_m,relief_m"); err != nil {
		return err
	}
	for i := range res.MeanElevation {
		fmt.Fprintf(w, "%g,%.6f,%.6f\n", float64(i+1)*dt, res.MeanElevation[i], res.Relief[i])
	}
	return nil
}

// ElevationASCII renders the topography as a terminal heat map.
func (g *Grid) ElevationASCII() string {
	return plot.HeatASCII(g.Z, g.Cols, g.Rows)
}
