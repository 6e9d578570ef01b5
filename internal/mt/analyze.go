package mt

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/plot"
)

// Report is the QC result for one site.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string

	Station        string
	Lat, Lon, Elev float64
	NFreq          int
	FreqRange      [2]float64
	PeriodRange    [2]float64
	MaxSkew        float64
	RhoRangeXY     [2]float64
	RhoRangeYX     [2]float64
}

// Analyze runs the quality checks over a parsed site.
func Analyze(s *Site) *Report {
	rep := &Report{
		Valid:   true,
		Station: s.Station,
		Lat:     s.Lat, Lon: s.Lon, Elev: s.Elevation,
		NFreq: len(s.Freq),
	}
	fmin, fmax := math.Inf(1), math.Inf(-1)
	for _, f := range s.Freq {
		fmin = math.Min(fmin, f)
		fmax = math.Max(fmax, f)
	}
	rep.FreqRange = [2]float64{fmin, fmax}
	rep.PeriodRange = [2]float64{1 / fmax, 1 / fmin}

	// Off-diagonal relative errors over 50%.
	nf := len(s.Freq)
	for _, comp := range []int{Zxy, Zyx} {
		bad := 0
		for _, re := range s.RelError(comp) {
			if re > 0.5 {
				bad++
			}
		}
		if float64(bad) > float64(nf)*0.3 {
			rep.Warnings = append(rep.Warnings,
				fmt.Sprintf("Z%s: %d/%d points have >50%% relative error",
					strings.ToLower(compNames[comp][1:]), bad, nf))
		}
	}

	// Non-finite impedances.
	nanCount := 0
	for c := 0; c < nComp; c++ {
		for _, z := range s.Z[c] {
			if math.IsNaN(real(z)) || math.IsNaN(imag(z)) ||
				math.IsInf(real(z), 0) || math.IsInf(imag(z), 0) {
				nanCount++
			}
		}
	}
	if nanCount > 0 {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("%d NaN/Inf values in impedance tensor", nanCount))
	}

	// Log-frequency spacing regularity.
	if nf > 2 {
		diffs := make([]float64, nf-1)
		var mean float64
		for i := 1; i < nf; i++ {
			diffs[i-1] = math.Log10(s.Freq[i]) - math.Log10(s.Freq[i-1])
			mean += math.Abs(diffs[i-1])
		}
		mean /= float64(len(diffs))
		var variance, dmean float64
		for _, d := range diffs {
			dmean += d
		}
		dmean /= float64(len(diffs))
		for _, d := range diffs {
			variance += (d - dmean) * (d - dmean)
		}
		sigma := math.Sqrt(variance / float64(len(diffs)))
		if sigma > 0.1*mean {
			rep.Warnings = append(rep.Warnings, "irregular frequency spacing detected")
		}
	}

	// Dimensionality from the phase tensor skew.
	rep.MaxSkew = 0
	for _, b := range s.PhaseTensorSkew() {
		if !math.IsNaN(b) {
			rep.MaxSkew = math.Max(rep.MaxSkew, math.Abs(b))
		}
	}
	if rep.MaxSkew > 5 {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("max |skew| = %.1f deg suggests 3D structure", rep.MaxSkew))
	}

	rep.RhoRangeXY = finiteRange(s.AppRes(Zxy))
	rep.RhoRangeYX = finiteRange(s.AppRes(Zyx))
	return rep
}

func finiteRange(v []float64) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo > hi {
		return [2]float64{math.NaN(), math.NaN()}
	}
	return [2]float64{lo, hi}
}

// Write prints the report in the layout used by the other QC commands.
func (r *Report) Write(w io.Writer, path string) {
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "File: %s\nStatus: %s\n", path, status)
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nStation Information:\n")
	fmt.Fprintf(w, "  station: %s\n", r.Station)
	fmt.Fprintf(w, "  latitude: %.4f\n  longitude: %.4f\n  elevation: %.1f\n", r.Lat, r.Lon, r.Elev)
	fmt.Fprintf(w, "  n_frequencies: %d\n", r.NFreq)
	fmt.Fprintf(w, "  frequency_range: %.4f - %.2f Hz\n", r.FreqRange[0], r.FreqRange[1])
	fmt.Fprintf(w, "  period_range: %.4f - %.2f s\n", r.PeriodRange[0], r.PeriodRange[1])
	fmt.Fprintf(w, "  max_skew: %.2f deg\n", r.MaxSkew)
	if !math.IsNaN(r.RhoRangeXY[0]) {
		fmt.Fprintf(w, "  resistivity_range_xy: %.2f - %.2f Ohm-m\n", r.RhoRangeXY[0], r.RhoRangeXY[1])
	}
	if !math.IsNaN(r.RhoRangeYX[0]) {
		fmt.Fprintf(w, "  resistivity_range_yx: %.2f - %.2f Ohm-m\n", r.RhoRangeYX[0], r.RhoRangeYX[1])
	}

	for _, e := range r.Errors {
		fmt.Fprintf(w, "\nError: %s\n", e)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	} else if len(r.Errors) == 0 {
		fmt.Fprintf(w, "\nNo issues found.\n")
	}
}

// ExportCSV writes the derived sounding table.
func ExportCSV(w io.Writer, s *Site) error {
	cw := csv.NewWriter(w)
	header := []string{"frequency_hz", "period_s",
		"rho_xy_ohm_m", "rho_yx_ohm_m", "phase_xy_deg", "phase_yx_deg",
		"z_xy_real", "z_xy_imag", "z_yx_real", "z_yx_imag", "z_xy_err", "z_yx_err"}
	if err := cw.Write(header); err != nil {
		return err
	}
	rhoXY, rhoYX := s.AppRes(Zxy), s.AppRes(Zyx)
	phXY, phYX := s.Phase(Zxy), s.Phase(Zyx)
	for i, f := range s.Freq {
		rec := []string{
			fmtG(f), fmtG(1 / f),
			fmtG(rhoXY[i]), fmtG(rhoYX[i]), fmtG(phXY[i]), fmtG(phYX[i]),
			fmtG(real(s.Z[Zxy][i])), fmtG(imag(s.Z[Zxy][i])),
			fmtG(real(s.Z[Zyx][i])), fmtG(imag(s.Z[Zyx][i])),
			fmtG(s.ZErr[Zxy][i]), fmtG(s.ZErr[Zyx][i]),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtG(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }

// SoundingASCII renders log10 apparent resistivity against log10
// period for both off-diagonal components.
func SoundingASCII(s *Site) string {
	periods := s.Periods()
	logRhoXY := make([]float64, len(periods))
	logRhoYX := make([]float64, len(periods))
	rhoXY, rhoYX := s.AppRes(Zxy), s.AppRes(Zyx)
	for i := range periods {
		logRhoXY[i] = math.Log10(math.Max(rhoXY[i], 1e-10))
		logRhoYX[i] = math.Log10(math.Max(rhoYX[i], 1e-10))
	}
	return plot.SeriesPair(logRhoXY, logRhoYX,
		"log10 apparent resistivity (xy, yx) vs sample, short to long period")
}
