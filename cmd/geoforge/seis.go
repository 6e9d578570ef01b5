package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/seis"
	"github.com/san-kum/geoforge/internal/trace"
)

func newAVOCmd() *cobra.Command {
	var (
		vp1, vs1, rho1 float64
		vp2, vs2, rho2 float64
		thetaMax       float64
		step           float64
		threeTerm      bool
		plotFile       string
		noPlot         bool
	)
	cmd := &cobra.Command{
		Use:   "avo",
		Short: "AVO reflectivity analysis of a two-layer interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			upper := seis.Layer{Vp: vp1, Vs: vs1, Rho: rho1}
			lower := seis.Layer{Vp: vp2, Vs: vs2, Rho: rho2}
			res, err := seis.Analyze(upper, lower, thetaMax, step, threeTerm)
			if err != nil {
				return err
			}
			printAVOReport(res)
			if noPlot {
				return nil
			}
			if plotFile != "" {
				label := "Shuey 2-term"
				if threeTerm {
					label = "Aki-Richards 3-term"
				}
				svg := plot.LineSVG([]plot.Curve{{X: res.Theta, Y: res.Rpp, Label: label}},
					"AVO reflectivity", "incidence angle (deg)", "Rpp")
				if err := plot.WriteFile(plotFile, svg); err != nil {
					return err
				}
				fmt.Printf("\nFigure saved to: %s\n", plotFile)
				return nil
			}
			fmt.Println()
			fmt.Println(plot.Series(res.Rpp, "Rpp vs incidence angle"))
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&vp1, "vp1", 0, "upper layer P velocity (m/s)")
	f.Float64Var(&vs1, "vs1", 0, "upper layer S velocity (m/s)")
	f.Float64Var(&rho1, "rho1", 0, "upper layer density (kg/m3)")
	f.Float64Var(&vp2, "vp2", 0, "lower layer P velocity (m/s)")
	f.Float64Var(&vs2, "vs2", 0, "lower layer S velocity (m/s)")
	f.Float64Var(&rho2, "rho2", 0, "lower layer density (kg/m3)")
	f.Float64Var(&thetaMax, "theta-max", 45, "maximum incidence angle (deg)")
	f.Float64Var(&step, "step", 1, "angle step (deg)")
	f.BoolVar(&threeTerm, "three-term", false, "use the Aki-Richards 3-term approximation")
	f.StringVar(&plotFile, "plot", "", "write the reflectivity curve to an SVG file")
	f.BoolVar(&noPlot, "no-plot", false, "suppress plotting")
	for _, name := range []string{"vp1", "vs1", "rho1", "vp2", "vs2", "rho2"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func printAVOReport(r *seis.AVOResult) {
	rule := strings.Repeat("=", 60)
	fmt.Println("\n" + rule)
	fmt.Println("AVO ANALYSIS REPORT")
	fmt.Println(rule)

	fmt.Println("\nLayer Properties:")
	fmt.Printf("  Upper layer: Vp=%.0f m/s, Vs=%.0f m/s, rho=%.0f kg/m3\n",
		r.Upper.Vp, r.Upper.Vs, r.Upper.Rho)
	fmt.Printf("  Lower layer: Vp=%.0f m/s, Vs=%.0f m/s, rho=%.0f kg/m3\n",
		r.Lower.Vp, r.Lower.Vs, r.Lower.Rho)

	fmt.Println("\nDerived Properties:")
	fmt.Printf("  Upper Zp: %.0f\n", r.Upper.Impedance())
	fmt.Printf("  Lower Zp: %.0f\n", r.Lower.Impedance())
	fmt.Printf("  Upper Vp/Vs: %.3f   Poisson: %.3f\n", r.Upper.VpVs(), r.Upper.PoissonRatio())
	fmt.Printf("  Lower Vp/Vs: %.3f   Poisson: %.3f\n", r.Lower.VpVs(), r.Lower.PoissonRatio())
	fmt.Printf("  Impedance contrast: %.4f\n", r.ImpedanceContrast)

	fmt.Println("\nAVO Attributes:")
	fmt.Printf("  Intercept (A): %.4f\n", r.Intercept)
	fmt.Printf("  Gradient (B): %.4f\n", r.Gradient)
	fmt.Printf("  AVO Class: %s\n", r.Class)

	fmt.Println("\nReflectivity at key angles:")
	for _, angle := range []float64{0, 15, 30, 45} {
		if angle <= r.Theta[len(r.Theta)-1] {
			fmt.Printf("  R(%2.0fdeg): %.4f\n", angle, r.At(angle))
		}
	}
	fmt.Println(rule)
}

func newDeconvCmd() *cobra.Command {
	var (
		wavelet string
		f0      float64
		noise   float64
		eps     float64
		samples int
		spikes  int
		seed    int64
		output  string
	)
	cmd := &cobra.Command{
		Use:   "deconv",
		Short: "wavelet deconvolution experiment on a synthetic trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			const dt = 0.004 // 4 ms sample rate
			var (
				w   []float64
				err error
			)
			switch wavelet {
			case "ricker":
				w, err = seis.Ricker(f0, dt, 0.1)
			case "ormsby":
				w, err = seis.Ormsby(5, 10, 40, 50, dt, 0.1)
			default:
				return fmt.Errorf("unknown wavelet: %s (want ricker or ormsby)", wavelet)
			}
			if err != nil {
				return err
			}

			truth := seis.SyntheticReflectivity(samples, spikes, seed)
			syn := seis.Convolve(truth, w)
			rng := rand.New(rand.NewSource(seed))
			for i := range syn {
				syn[i] += noise * rng.NormFloat64()
			}

			res, err := seis.Deconvolve(syn, w, truth, eps)
			if err != nil {
				return err
			}

			fmt.Println("Deconvolution Results:")
			fmt.Printf("  Wavelet: %s (%g Hz)\n", wavelet, f0)
			fmt.Printf("  Dominant frequency: %.1f Hz\n", trace.DominantFrequency(syn, 1/dt))
			fmt.Printf("  Noise level: %.3f\n", noise)
			fmt.Printf("  Regularization: %g\n", eps)
			fmt.Printf("  Relative residual: %.4f\n", res.RelativeResidual)
			if !math.IsNaN(res.Correlation) {
				fmt.Printf("  Correlation with true: %.4f\n", res.Correlation)
			}
			fmt.Println()
			fmt.Println(plot.SeriesPair(syn, res.Reflectivity, "trace (a) vs recovered reflectivity (b)"))

			if output == "" {
				return nil
			}
			file, err := os.Create(output)
			if err != nil {
				return err
			}
			defer file.Close()
			cw := csv.NewWriter(file)
			defer cw.Flush()
			if err := cw.Write([]string{"t_ms", "true", "trace", "recovered"}); err != nil {
				return err
			}
			for i := range truth {
				row := []string{
					strconv.FormatFloat(float64(i)*dt*1000, 'f', 1, 64),
					strconv.FormatFloat(truth[i], 'g', -1, 64),
					strconv.FormatFloat(syn[i], 'g', -1, 64),
					strconv.FormatFloat(res.Reflectivity[i], 'g', -1, 64),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
			fmt.Printf("series written to %s\n", output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&wavelet, "wavelet", "ricker", "wavelet type: ricker or ormsby")
	f.Float64Var(&f0, "f0", 25, "Ricker peak frequency (Hz)")
	f.Float64Var(&noise, "noise", 0.05, "noise standard deviation")
	f.Float64Var(&eps, "eps", 0.01, "Tikhonov regularization weight")
	f.IntVar(&samples, "samples", 500, "number of samples")
	f.IntVar(&spikes, "spikes", 15, "number of reflectors")
	f.Int64Var(&seed, "seed", 42, "random seed")
	f.StringVar(&output, "output", "", "CSV output path")
	return cmd
}
