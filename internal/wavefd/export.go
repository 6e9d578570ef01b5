package wavefd

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/vtk"
)

// WriteShotCSV emits the shot record, one row per time step with a
// leading time column.
func (r *Result) WriteShotCSV(w io.Writer, dtMs float64) error {
	if _, err := fmt.Fprint(w, "t_ms"); err != nil {
		return err
	}
	for ix := range r.Shot[0] {
		if _, err := fmt.Fprintf(w, ",rec_%03d", ix); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for step, rec := range r.Shot {
		if _, err := fmt.Fprintf(w, "%g", float64(step+1)*dtMs); err != nil {
			return err
		}
		for _, v := range rec {
			if _, err := fmt.Fprintf(w, ",%g", v); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// ShotSVG renders the shot record as a time-by-receiver image.
func (r *Result) ShotSVG(title string) string {
	flat := make([]float64, 0, len(r.Shot)*len(r.Shot[0]))
	for _, rec := range r.Shot {
		flat = append(flat, rec...)
	}
	return plot.HeatmapSVG(flat, len(r.Shot[0]), len(r.Shot), title)
}

// FieldASCII renders one snapshot for the terminal.
func (s *Snapshot) FieldASCII(nx, nz int) string {
	return plot.HeatASCII(s.Field, nx, nz)
}

// WriteSnapshotVTK exports one wavefield frame as structured points,
// with the velocity model alongside for overlay.
func (r *Result) WriteSnapshotVTK(w io.Writer, s *Snapshot) error {
	m := r.Model
	return vtk.WriteStructuredPoints(w,
		fmt.Sprintf("acoustic wavefield t=%.1f ms", s.TimeMs),
		m.NX, m.NZ, 1,
		[3]float64{0, 0, 0}, [3]float64{m.DX, m.DX, 1},
		[]vtk.Scalars{
			{Name: "pressure", Data: s.Field},
			{Name: "velocity", Data: m.Vel},
		})
}

// WriteReport prints the run summary.
func (r *Result) WriteReport(w io.Writer, cfg Config) {
	cfg = cfg.withDefaults()
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nAcoustic Shot Modeling\n%s\n", rule, rule)
	fmt.Fprintf(w, "Grid:              %d x %d points (%.0f x %.0f m)\n",
		r.Model.NX, r.Model.NZ, float64(r.Model.NX)*r.Model.DX, float64(r.Model.NZ)*r.Model.DX)
	fmt.Fprintf(w, "Time steps:        %d (dt %.2f ms)\n", len(r.Shot), cfg.DTms)
	fmt.Fprintf(w, "Source frequency:  %g Hz at column %d\n", cfg.F0, r.SrcIX)
	fmt.Fprintf(w, "Velocity:          %g / %g m/s\n", cfg.V0, cfg.V1)
	fmt.Fprintf(w, "Max amplitude:     %.3e\n", r.MaxAmp)
	fmt.Fprintf(w, "Snapshots kept:    %d\n", len(r.Snapshots))
}
