package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/climate"
)

func newClimateCmd() *cobra.Command {
	var (
		varName   string
		output    string
		anomalies bool
		trend     bool
		seasonal  bool
		noPlot    bool
	)
	cmd := &cobra.Command{
		Use:   "climate DATA.nc",
		Short: "climatology, anomalies and trends for a gridded series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := climate.Open(args[0], varName)
			if err != nil {
				return err
			}
			for _, w := range ds.Warnings {
				fmt.Printf("WARNING: %s\n", w)
			}

			ds.WriteReport(os.Stdout)
			if seasonal {
				means := ds.SeasonalMeans()
				fmt.Printf("\nSeasonal Means:\n")
				for _, season := range []string{"DJF", "MAM", "JJA", "SON"} {
					fmt.Printf("  %s  %10.4f\n", season, means[season])
				}
			}
			if !noPlot {
				fmt.Println()
				fmt.Println(ds.SeriesASCII())
			}

			if output != "" {
				if err := os.MkdirAll(output, 0755); err != nil {
					return err
				}
				path := filepath.Join(output, "climatology.nc")
				if err := ds.WriteClimatologyNC(path); err != nil {
					return err
				}
				fmt.Printf("climatology written to %s\n", path)
				if trend {
					path = filepath.Join(output, "trend.nc")
					if err := ds.WriteTrendNC(path); err != nil {
						return err
					}
					fmt.Printf("trend map written to %s\n", path)
				}
				if anomalies {
					path = filepath.Join(output, "anomalies.nc")
					if err := ds.WriteAnomaliesNC(path); err != nil {
						return err
					}
					fmt.Printf("anomalies written to %s\n", path)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&varName, "var", "", "variable name (default: first gridded variable)")
	f.StringVarP(&output, "output", "o", "", "output directory for NetCDF results")
	f.BoolVar(&anomalies, "anomalies", false, "write the anomaly cube")
	f.BoolVar(&trend, "trend", false, "write the per-cell trend map")
	f.BoolVar(&seasonal, "seasonal", false, "print seasonal means")
	f.BoolVar(&noPlot, "no-plot", false, "skip the ascii series plot")
	return cmd
}
