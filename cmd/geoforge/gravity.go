package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/gravity"
)

func newGravityCmd() *cobra.Command {
	var (
		demPath        string
		density        float64
		output         string
		example        bool
		regionalDegree int
	)
	cmd := &cobra.Command{
		Use:   "gravity [SURVEY.csv]",
		Short: "gravity corrections and anomalies for a station survey",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				stations []gravity.Station
				err      error
			)
			switch {
			case example:
				stations = gravity.ExampleSurvey(50)
				fmt.Println("Using synthetic example survey (50 stations)")
			case len(args) == 1:
				stations, err = gravity.LoadSurvey(args[0])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("a survey CSV or --example is required")
			}

			opts := gravity.Options{Density: density, RegionalDegree: regionalDegree}
			if demPath != "" {
				opts.DEM, err = gravity.LoadDEM(demPath)
				if err != nil {
					return err
				}
				fmt.Printf("DEM loaded: %dx%d cells\n", len(opts.DEM.X), len(opts.DEM.Y))
			}
			if err := gravity.Process(stations, opts); err != nil {
				return err
			}

			rule := strings.Repeat("=", 60)
			fmt.Printf("\n%s\nGravity Processing (%d stations, density %g kg/m3)\n%s\n",
				rule, len(stations), density, rule)
			printGravityStat := func(name string, get func(gravity.Station) float64) {
				min, max, mean := gravity.SummaryStats(stations, get)
				fmt.Printf("%-24s min %10.3f  max %10.3f  mean %10.3f\n", name, min, max, mean)
			}
			printGravityStat("Normal gravity (mGal)", func(s gravity.Station) float64 { return s.Normal })
			printGravityStat("Free-air anomaly", func(s gravity.Station) float64 { return s.FreeAirAnomaly })
			printGravityStat("Simple Bouguer", func(s gravity.Station) float64 { return s.SimpleBouguer })
			if opts.DEM != nil {
				printGravityStat("Terrain correction", func(s gravity.Station) float64 { return s.TerrainCorr })
				printGravityStat("Complete Bouguer", func(s gravity.Station) float64 { return s.CompleteBouguer })
			}
			if regionalDegree > 0 {
				printGravityStat("Residual", func(s gravity.Station) float64 { return s.Residual })
			}

			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := gravity.WriteSurvey(file, stations, opts.DEM != nil); err != nil {
					return err
				}
				fmt.Printf("\nprocessed survey written to %s\n", output)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&demPath, "dem", "", "DEM grid (NetCDF or ESRI ASCII) for the terrain correction")
	f.Float64Var(&density, "density", 2670, "reduction density (kg/m3)")
	f.StringVarP(&output, "output", "o", "", "CSV output with correction columns")
	f.BoolVar(&example, "example", false, "process a synthetic demo survey")
	f.IntVar(&regionalDegree, "regional-degree", 0, "polynomial regional degree (0 skips)")
	return cmd
}
