package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/config"
	"github.com/san-kum/geoforge/internal/geostat"
	"github.com/san-kum/geoforge/internal/plot"
)

func newVarioCmd() *cobra.Command {
	var (
		xCol, yCol, zCol string
		nLags            int
		maxlag           string
		outputDir        string
		noPlots          bool
	)
	cmd := &cobra.Command{
		Use:   "vario CSV",
		Short: "experimental variogram estimation and model comparison",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := geostat.LoadCSV(args[0], xCol, yCol, zCol)
			if err != nil {
				return err
			}
			lag, err := parseMaxlag(maxlag)
			if err != nil {
				return err
			}

			mean, std, min, max := p.Stats()
			fmt.Printf("Data: %d points, mean %.4f, std %.4f, range [%.4f, %.4f]\n",
				p.Len(), mean, std, min, max)

			emp, err := geostat.EmpiricalVariogram(p, nLags, lag, geostat.Matheron)
			if err != nil {
				return err
			}

			fits, err := geostat.CompareModels(emp)
			if err != nil {
				return err
			}
			fmt.Println("\nModel comparison (matheron estimator):")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tRANGE\tSILL\tNUGGET\tRMSE\t")
			for i, fit := range fits {
				best := ""
				if i == 0 {
					best = "*"
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.4f\t%.4f\t%.5f\t%s\n",
					fit.Model, fit.Params.Range, fit.Params.Sill, fit.Params.Nugget,
					fit.RMSE, best)
			}
			w.Flush()

			fmt.Println("\nEstimator comparison (best model):")
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ESTIMATOR\tRANGE\tSILL\tRMSE")
			for _, est := range geostat.Estimators {
				e, err := geostat.EmpiricalVariogram(p, nLags, lag, est)
				if err != nil {
					return err
				}
				fit, err := geostat.Fit(e, fits[0].Model)
				if err != nil {
					fmt.Fprintf(w, "%s\t(fit failed: %v)\t\t\n", est, err)
					continue
				}
				fmt.Fprintf(w, "%s\t%.2f\t%.4f\t%.5f\n",
					est, fit.Params.Range, fit.Params.Sill, fit.RMSE)
			}
			w.Flush()

			dirs, ratio, err := geostat.Anisotropy(p, nLags, lag)
			if err == nil {
				fmt.Println("\nAnisotropy (spherical fits by azimuth):")
				for _, d := range dirs {
					fmt.Printf("  %3.0f deg: range %.2f, sill %.4f\n", d.Azimuth, d.Range, d.Sill)
				}
				fmt.Printf("  Range ratio: %.2f", ratio)
				if geostat.Anisotropic(ratio) {
					fmt.Print("  -> anisotropic, consider directional kriging")
				}
				fmt.Println()
			}

			if !noPlots {
				fmt.Println()
				fmt.Println(plot.ScatterASCII(emp.Lags, emp.Gamma, 60, 15))
			}

			if outputDir != "" {
				if err := os.MkdirAll(outputDir, 0755); err != nil {
					return err
				}
				results := struct {
					Empirical *geostat.Empirical  `json:"empirical"`
					Fits      []geostat.FitResult `json:"fits"`
					Ratio     float64             `json:"anisotropy_ratio"`
				}{emp, fits, ratio}
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				jsonPath := filepath.Join(outputDir, "variogram.json")
				if err := os.WriteFile(jsonPath, data, 0644); err != nil {
					return err
				}

				best := fits[0]
				model := make([]float64, len(emp.Lags))
				for i, h := range emp.Lags {
					model[i] = best.Model.Gamma(h, best.Params)
				}
				svg := plot.LineSVG([]plot.Curve{
					{X: emp.Lags, Y: emp.Gamma, Label: "empirical"},
					{X: emp.Lags, Y: model, Label: string(best.Model)},
				}, "Variogram", "lag distance", "semivariance")
				svgPath := filepath.Join(outputDir, "variogram.svg")
				if err := plot.WriteFile(svgPath, svg); err != nil {
					return err
				}
				fmt.Printf("\nresults written to %s and %s\n", jsonPath, svgPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&xCol, "x", "", "X coordinate column name")
	f.StringVar(&yCol, "y", "", "Y coordinate column name")
	f.StringVar(&zCol, "z", "", "value column name")
	f.IntVar(&nLags, "n-lags", 15, "number of lag bins")
	f.StringVar(&maxlag, "maxlag", "median", "maximum lag distance or 'median'")
	f.StringVarP(&outputDir, "output", "o", "", "output directory for JSON/SVG results")
	f.BoolVar(&noPlots, "no-plots", false, "suppress the terminal plot")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagRequired("y")
	cmd.MarkFlagRequired("z")
	return cmd
}

func parseMaxlag(s string) (float64, error) {
	if s == "" || s == "median" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad maxlag %q: want a number or 'median'", s)
	}
	return v, nil
}

func newKrigeCmd() *cobra.Command {
	var (
		property     string
		xCol, yCol   string
		nLags        int
		maxlag       string
		vrange       float64
		nugget, sill float64
		model        string
		nx, ny       int
		ktype        string
		radius       float64
		ndmax        int
		outputDir    string
		preset       string
	)
	cmd := &cobra.Command{
		Use:   "krige CSV",
		Short: "normal-score transform and kriging to a regular grid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			estimator := geostat.Matheron
			if preset != "" {
				c := config.GetPreset("krige", preset)
				if c == nil {
					return fmt.Errorf("unknown preset %q", preset)
				}
				set := cmd.Flags().Changed
				if !set("model") {
					model = c.Krige.Model
				}
				if !set("nlags") {
					nLags = c.Krige.Bins
				}
				if !set("ktype") {
					ktype = c.Krige.Type
				}
				if !set("nx") {
					nx = c.Krige.NX
				}
				if !set("ny") {
					ny = c.Krige.NY
				}
				if !set("radius") {
					radius = c.Krige.Radius
				}
				if !set("ndmax") {
					ndmax = c.Krige.MaxNeighbors
				}
				estimator = geostat.Estimator(c.Krige.Estimator)
			}

			p, err := geostat.LoadCSV(args[0], xCol, yCol, property)
			if err != nil {
				return err
			}
			mean, std, min, max := p.Stats()
			fmt.Printf("Data: %d points of %s, mean %.4f, std %.4f\n",
				p.Len(), property, mean, std)

			// Normal-score transform, krige in Gaussian space, back-transform.
			scores, table := geostat.NScore(p.V)
			ns := geostat.Points{X: p.X, Y: p.Y, V: scores}
			fmt.Println("Normal-score transform applied")

			params := geostat.Params{Range: vrange, Sill: sill, Nugget: nugget}
			if !cmd.Flags().Changed("range") {
				lag, err := parseMaxlag(maxlag)
				if err != nil {
					return err
				}
				emp, err := geostat.EmpiricalVariogram(ns, nLags, lag, estimator)
				if err != nil {
					return err
				}
				fit, err := geostat.Fit(emp, geostat.Model(model))
				if err != nil {
					return err
				}
				params = fit.Params
				fmt.Printf("Fitted %s model: range %.2f, sill %.4f, nugget %.4f (rmse %.5f)\n",
					model, params.Range, params.Sill, params.Nugget, fit.RMSE)
			} else {
				fmt.Printf("Using %s model: range %.2f, sill %.4f, nugget %.4f\n",
					model, params.Range, params.Sill, params.Nugget)
			}

			kt := geostat.OrdinaryKriging
			if ktype == "simple" {
				kt = geostat.SimpleKriging
			}
			spec := geostat.SpecFromPoints(p, nx, ny)
			grid, err := geostat.Krige(ns, geostat.Model(model), params, spec,
				geostat.KrigeOptions{Type: kt, Radius: radius, NDMax: ndmax})
			if err != nil {
				return err
			}

			// Back-transform estimates to data units.
			back := &geostat.Grid{Spec: spec, Est: make([]float64, len(grid.Est)), Var: grid.Var}
			for i, v := range grid.Est {
				if math.IsNaN(v) {
					back.Est[i] = math.NaN()
					continue
				}
				back.Est[i] = table.BackTransform(v, min, max)
			}

			gmin, gmax, gmean := back.Stats()
			fmt.Printf("Kriged %dx%d grid (%s): min %.4f, max %.4f, mean %.4f\n",
				nx, ny, kt, gmin, gmax, gmean)
			fmt.Println()
			fmt.Println(plot.HeatASCII(back.Est, nx, ny))

			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return err
			}
			estPath := filepath.Join(outputDir, "kriged.csv")
			file, err := os.Create(estPath)
			if err != nil {
				return err
			}
			if err := back.WriteCSV(file); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			svgPath := filepath.Join(outputDir, "kriged.svg")
			if err := plot.WriteFile(svgPath, plot.HeatmapSVG(back.Est, nx, ny, "Kriged "+property)); err != nil {
				return err
			}
			fmt.Printf("grid written to %s, image to %s\n", estPath, svgPath)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&property, "property", "p", "porosity", "property column name")
	f.StringVar(&xCol, "x", "X", "X coordinate column name")
	f.StringVar(&yCol, "y", "Y", "Y coordinate column name")
	f.IntVar(&nLags, "nlags", 15, "number of lag bins for the fit")
	f.StringVar(&maxlag, "lag", "median", "maximum lag distance or 'median'")
	f.Float64Var(&vrange, "range", 300, "variogram range (skips fitting)")
	f.Float64Var(&nugget, "nugget", 0, "nugget effect")
	f.Float64Var(&sill, "sill", 1, "sill")
	f.StringVar(&model, "model", "spherical", "variogram model: spherical, exponential, gaussian")
	f.IntVar(&nx, "nx", 50, "grid cells in X")
	f.IntVar(&ny, "ny", 50, "grid cells in Y")
	f.StringVar(&ktype, "ktype", "ordinary", "kriging type: ordinary or simple")
	f.Float64Var(&radius, "radius", 0, "search radius (0 = unlimited)")
	f.IntVar(&ndmax, "ndmax", 16, "maximum conditioning points per node")
	f.StringVarP(&outputDir, "output", "o", ".", "output directory")
	f.StringVar(&preset, "preset", "", "named parameter preset")
	return cmd
}

func newGridCmd() *cobra.Command {
	var (
		spacing          float64
		gridder          string
		damping          float64
		blockMean        float64
		trend            int
		xCol, yCol, vCol string
		power            float64
	)
	cmd := &cobra.Command{
		Use:   "grid CSV OUT.csv",
		Short: "grid scattered data with spline, IDW or nearest neighbor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := geostat.LoadCSV(args[0], xCol, yCol, vCol)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d points\n", p.Len())

			if blockMean > 0 {
				p, err = geostat.BlockReduce(p, blockMean, "mean")
				if err != nil {
					return err
				}
				fmt.Printf("Block mean (size %g): %d points\n", blockMean, p.Len())
			}

			var tr geostat.Trend
			if trend > 0 {
				p, tr, err = geostat.TrendRemove(p, trend)
				if err != nil {
					return err
				}
				fmt.Printf("Removed degree-%d trend\n", trend)
			}

			xmin, xmax, ymin, ymax := p.Bounds()
			nx := int(math.Ceil((xmax-xmin)/spacing)) + 1
			ny := int(math.Ceil((ymax-ymin)/spacing)) + 1
			spec := geostat.GridSpec{NX: nx, NY: ny, Xmin: xmin, Xmax: xmax, Ymin: ymin, Ymax: ymax}

			var grid *geostat.Grid
			switch gridder {
			case "spline":
				grid, err = geostat.Spline(p, spec, damping)
			case "idw":
				grid, err = geostat.IDW(p, spec, power)
			case "nearest":
				grid, err = geostat.Nearest(p, spec)
			default:
				return fmt.Errorf("unknown gridder: %s (want spline, idw or nearest)", gridder)
			}
			if err != nil {
				return err
			}

			if trend > 0 {
				for iy := 0; iy < ny; iy++ {
					for ix := 0; ix < nx; ix++ {
						grid.Est[iy*nx+ix] += tr.Eval(spec.CellX(ix), spec.CellY(iy))
					}
				}
			}

			gmin, gmax, gmean := grid.Stats()
			fmt.Printf("Grid %dx%d (%s): min %.4f, max %.4f, mean %.4f\n",
				nx, ny, gridder, gmin, gmax, gmean)

			file, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer file.Close()
			if err := grid.WriteCSV(file); err != nil {
				return err
			}
			fmt.Printf("grid written to %s\n", args[1])
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&spacing, "spacing", 0, "grid spacing in data units")
	f.StringVar(&gridder, "gridder", "spline", "gridder: spline, idw or nearest")
	f.Float64Var(&damping, "damping", 1e-10, "damping for the spline gridder")
	f.Float64Var(&blockMean, "block-mean", 0, "block-mean reduction size before gridding")
	f.IntVar(&trend, "trend", 0, "remove polynomial trend of this degree (1 or 2)")
	f.StringVar(&xCol, "x", "x", "X column name")
	f.StringVar(&yCol, "y", "y", "Y column name")
	f.StringVar(&vCol, "value", "value", "value column name")
	f.Float64Var(&power, "power", 2, "IDW distance power")
	cmd.MarkFlagRequired("spacing")
	return cmd
}
