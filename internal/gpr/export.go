package gpr

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/segy"
)

// WriteCSV emits the samples-by-traces matrix ReadCSV accepts.
func (p *Profile) WriteCSV(w io.Writer) error {
	for s := 0; s < p.NumSamples(); s++ {
		for t := 0; t < p.NumTraces(); t++ {
			if t > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "%g", p.Traces[t][s]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// ExportSEGY writes the processed profile as IEEE-float SEG-Y with the
// sampling stored in the interval field in picoseconds.
func (p *Profile) ExportSEGY(path string) error {
	w, err := segy.Create(path, segy.Spec{
		Samples: p.NumSamples(),
		Format:  5,
		Dt:      int(math.Round(p.DtNs * 1000)),
	})
	if err != nil {
		return err
	}
	for _, tr := range p.Traces {
		if err := w.WriteTrace(nil, tr); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// flatten returns the radargram row-major (samples by traces).
func (p *Profile) flatten() []float64 {
	out := make([]float64, 0, p.NumSamples()*p.NumTraces())
	for s := 0; s < p.NumSamples(); s++ {
		for t := 0; t < p.NumTraces(); t++ {
			out = append(out, p.Traces[t][s])
		}
	}
	return out
}

// RadargramSVG renders the amplitude image.
func (p *Profile) RadargramSVG(title string) string {
	return plot.HeatmapSVG(p.flatten(), p.NumTraces(), p.NumSamples(), title)
}

// RadargramASCII renders a terminal amplitude map.
func (p *Profile) RadargramASCII() string {
	return plot.HeatASCII(p.flatten(), p.NumTraces(), p.NumSamples())
}

// WriteReport prints the processing summary and step log.
func (p *Profile) WriteReport(w io.Writer, outputs []string) {
	fmt.Fprintf(w, "\n%s\nFile: %s\nStatus: SUCCESS\n%s\n", strings.Repeat("=", 60), p.Path, strings.Repeat("=", 60))
	fmt.Fprintf(w, "\nProcessing Info:\n")
	fmt.Fprintf(w, "  n_traces: %d\n", p.NumTraces())
	fmt.Fprintf(w, "  n_samples: %d\n", p.NumSamples())
	fmt.Fprintf(w, "  time_range_ns: %g\n", p.TimeRange())
	fmt.Fprintf(w, "  dominant_freq_mhz: %.1f\n", p.DominantFrequencyMHz())
	fmt.Fprintf(w, "  profile_length_m: %g\n", p.Length())
	if p.Velocity > 0 {
		fmt.Fprintf(w, "  velocity_m_ns: %g\n", p.Velocity)
		fmt.Fprintf(w, "  max_depth_m: %.2f\n", p.MaxDepth())
	}
	for _, step := range p.Steps {
		fmt.Fprintf(w, "  step: %s\n", step)
	}
	if len(outputs) > 0 {
		fmt.Fprintf(w, "\nOutput Files:\n")
		for _, f := range outputs {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(p.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range p.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}
