package hydro

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/geoforge/internal/plot"
)

// WriteReport prints the fit in the usual model-report layout.
func (m *Model) WriteReport(w io.Writer, fit *FitResult) {
	fmt.Fprintf(w, "\n%s\nModel: %s\n%s\n", strings.Repeat("=", 60), m.Name, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nStress Models:\n")
	fmt.Fprintf(w, "  - recharge: %s\n", fit.Response)
	if m.Pump != nil {
		fmt.Fprintf(w, "  - pumping: %s\n", Exponential)
	}

	fmt.Fprintf(w, "\nModel Statistics:\n")
	fmt.Fprintf(w, "  EVP (Explained Variance):  %.1f%%\n", fit.EVP)
	fmt.Fprintf(w, "  RMSE:                      %.4f m\n", fit.RMSE)
	fmt.Fprintf(w, "  R2:                        %.4f\n", fit.R2)
	fmt.Fprintf(w, "  AIC:                       %.1f\n", fit.AIC)
	fmt.Fprintf(w, "  BIC:                       %.1f\n", fit.BIC)
	fmt.Fprintf(w, "  Observations:              %d\n", fit.NObs)

	fmt.Fprintf(w, "\nCalibrated Parameters:\n")
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  d\t%.4f\n", fit.Params.D)
	fmt.Fprintf(tw, "  gain_a\t%.4f\n", fit.Params.Gain)
	if fit.Response == Gamma {
		fmt.Fprintf(tw, "  shape_n\t%.4f\n", fit.Params.Shape)
	}
	fmt.Fprintf(tw, "  scale_a\t%.4f\n", fit.Params.Scale)
	fmt.Fprintf(tw, "  evap_f\t%.4f\n", fit.Params.EvapFactor)
	if m.Pump != nil {
		fmt.Fprintf(tw, "  pump_gain\t%.6f\n", fit.Params.PumpGain)
		fmt.Fprintf(tw, "  pump_scale\t%.4f\n", fit.Params.PumpScale)
	}
	tw.Flush()

	for _, warning := range m.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
}

// WriteComparison tabulates response-function fits, best AIC first.
func (m *Model) WriteComparison(w io.Writer, fits []*FitResult) {
	fmt.Fprintf(w, "\nResponse Function Comparison:\n")
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "  RESPONSE\tEVP\tRMSE\tAIC\n")
	best := fits[0]
	for _, fit := range fits {
		fmt.Fprintf(tw, "  %s\t%.1f%%\t%.4f\t%.1f\n", fit.Response, fit.EVP, fit.RMSE, fit.AIC)
		if fit.AIC < best.AIC {
			best = fit
		}
	}
	tw.Flush()
	fmt.Fprintf(w, "\nBest model (lowest AIC): %s\n", best.Response)
}

// ExportCSV writes the daily simulation with observations joined on
// their dates.
func (m *Model) ExportCSV(w io.Writer, fit *FitResult) error {
	if _, err := fmt.Fprintln(w, "date,simulated,observed"); err != nil {
		return err
	}
	obsAt := map[int]float64{}
	for i, idx := range m.ObsIdx {
		obsAt[idx] = m.Obs[i]
	}
	for t := 0; t < m.NT; t++ {
		date := m.Start.AddDate(0, 0, t).Format("2006-01-02")
		if obs, ok := obsAt[t]; ok {
			fmt.Fprintf(w, "%s,%.6f,%.6f\n", date, fit.Simulated[t], obs)
		} else {
			fmt.Fprintf(w, "%s,%.6f,\n", date, fit.Simulated[t])
		}
	}
	return nil
}

// WriteJSON saves the fit result.
func WriteJSON(path string, fit *FitResult) error {
	data, err := json.MarshalIndent(fit, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// ObservedVsSimulatedASCII plots both series at the observation dates.
func (m *Model) ObservedVsSimulatedASCII(fit *FitResult) string {
	sim := make([]float64, len(m.ObsIdx))
	for i, idx := range m.ObsIdx {
		sim[i] = fit.Simulated[idx]
	}
	return plot.SeriesPair(m.Obs, sim, "head: observed vs simulated (m)")
}
