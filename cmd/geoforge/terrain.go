package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/config"
	"github.com/san-kum/geoforge/internal/terrain"
)

func newErodeCmd() *cobra.Command {
	var (
		rows, cols  int
		dx          float64
		runtime     float64
		dt          float64
		uplift      float64
		ksp         float64
		msp, nsp    float64
		diffusivity float64
		noise       float64
		seed        int64
		steadyTol   float64
		interval    int
		output      string
		vtkOut      bool
		preset      string
		configFile  string
		noPlot      bool
	)
	cmd := &cobra.Command{
		Use:   "erode",
		Short: "run a stream-power landscape evolution model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ecfg := config.DefaultConfig().Erode
			if preset != "" {
				c := config.GetPreset("erode", preset)
				if c == nil {
					return fmt.Errorf("unknown preset %q", preset)
				}
				ecfg = c.Erode
			}
			if configFile != "" {
				c, err := config.Load(configFile)
				if err != nil {
					return err
				}
				ecfg = c.Erode
			}
			set := cmd.Flags().Changed
			if set("rows") {
				ecfg.Rows = rows
			}
			if set("cols") {
				ecfg.Cols = cols
			}
			if set("dx") {
				ecfg.DX = dx
			}
			if set("runtime") {
				ecfg.Runtime = runtime
			}
			if set("dt") {
				ecfg.Dt = dt
			}
			if set("uplift") {
				ecfg.UpliftRate = uplift
			}
			if set("ksp") {
				ecfg.Ksp = ksp
			}
			if set("msp") {
				ecfg.Msp = msp
			}
			if set("nsp") {
				ecfg.Nsp = nsp
			}
			if set("diffusivity") {
				ecfg.Diffusivity = diffusivity
			}
			if set("noise") {
				ecfg.NoiseAmplitude = noise
			}
			if set("seed") {
				ecfg.Seed = seed
			}
			if set("steady-tol") {
				ecfg.SteadyTol = steadyTol
			}
			if set("interval") {
				ecfg.OutputInterval = interval
			}

			opts := terrain.Options{
				Rows:           ecfg.Rows,
				Cols:           ecfg.Cols,
				DX:             ecfg.DX,
				Runtime:        ecfg.Runtime,
				Dt:             ecfg.Dt,
				UpliftRate:     ecfg.UpliftRate,
				Ksp:            ecfg.Ksp,
				Msp:            ecfg.Msp,
				Nsp:            ecfg.Nsp,
				Diffusivity:    ecfg.Diffusivity,
				NoiseAmplitude: ecfg.NoiseAmplitude,
				Seed:           ecfg.Seed,
				OutputInterval: ecfg.OutputInterval,
				SteadyTol:      ecfg.SteadyTol,
			}
			if output != "" {
				if err := os.MkdirAll(output, 0755); err != nil {
					return err
				}
				opts.OutputDir = output
			}

			fmt.Printf("Landscape evolution: %dx%d grid, dx %g m, %g yr in %g yr steps\n",
				opts.Rows, opts.Cols, opts.DX, opts.Runtime, opts.Dt)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			res, err := terrain.Run(ctx, opts)
			if err != nil {
				return err
			}

			mean, relief := res.Grid.CoreStats()
			fmt.Printf("\nFinished after %d steps", res.Steps)
			if res.SteadyAt > 0 {
				fmt.Printf(" (steady state at step %d)", res.SteadyAt)
			}
			fmt.Printf("\nMean elevation %.2f m, relief %.2f m\n", mean, relief)
			if !noPlot {
				fmt.Println(res.Grid.ElevationASCII())
			}

			if output != "" {
				demPath := filepath.Join(output, "topography.asc")
				file, err := os.Create(demPath)
				if err != nil {
					return err
				}
				if err := terrain.WriteEsriASCII(file, res.Grid, res.Grid.Z); err != nil {
					file.Close()
					return err
				}
				file.Close()

				seriesPath := filepath.Join(output, "evolution.csv")
				file, err = os.Create(seriesPath)
				if err != nil {
					return err
				}
				if err := terrain.WriteSeriesCSV(file, opts.Dt, res); err != nil {
					file.Close()
					return err
				}
				file.Close()

				if vtkOut {
					vtkPath := filepath.Join(output, "topography.vtk")
					file, err = os.Create(vtkPath)
					if err != nil {
						return err
					}
					if err := terrain.WriteVTK(file, res.Grid, res.Flow); err != nil {
						file.Close()
						return err
					}
					file.Close()
				}
				fmt.Printf("outputs written to %s\n", output)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&rows, "rows", 50, "grid rows")
	f.IntVar(&cols, "cols", 50, "grid columns")
	f.Float64Var(&dx, "dx", 100, "cell size (m)")
	f.Float64Var(&runtime, "runtime", 5e5, "model time (yr)")
	f.Float64Var(&dt, "dt", 1000, "time step (yr)")
	f.Float64Var(&uplift, "uplift", 0.001, "uplift rate (m/yr)")
	f.Float64Var(&ksp, "ksp", 1e-5, "stream-power erodibility")
	f.Float64Var(&msp, "msp", 0.5, "drainage-area exponent")
	f.Float64Var(&nsp, "nsp", 1.0, "slope exponent")
	f.Float64Var(&diffusivity, "diffusivity", 0.01, "hillslope diffusivity (m2/yr)")
	f.Float64Var(&noise, "noise", 0.1, "initial roughness amplitude (m)")
	f.Int64Var(&seed, "seed", 42, "random seed for the initial surface")
	f.Float64Var(&steadyTol, "steady-tol", 0, "steady-state tolerance, mean |dz| per step (0 disables)")
	f.IntVar(&interval, "interval", 50, "steps between progress snapshots")
	f.StringVarP(&output, "output", "o", "", "output directory for grids and time series")
	f.BoolVar(&vtkOut, "vtk", false, "also write a VTK structured-points grid")
	f.StringVar(&preset, "preset", "", "named parameter preset")
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.BoolVar(&noPlot, "no-plot", false, "skip the ascii elevation map")
	return cmd
}
