package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/geochem"
	"github.com/san-kum/geoforge/internal/plot"
)

func newGeochemCmd() *cobra.Command {
	var (
		plots    []string
		groupCol string
		cols     []string
		output   string
		normCSV  bool
	)
	cmd := &cobra.Command{
		Use:   "geochem DATA.csv",
		Short: "REE normalization, TAS classification and geochemistry plots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := geochem.LoadCSV(args[0], groupCol)
			if err != nil {
				return err
			}
			for _, w := range table.Warnings {
				fmt.Printf("WARNING: %s\n", w)
			}
			fmt.Printf("Loaded %d samples, %d columns\n", table.N, len(table.Columns))

			want := func(kind string) bool {
				for _, p := range plots {
					if p == kind || p == "all" {
						return true
					}
				}
				return false
			}
			if output == "" {
				output = "."
			}
			if err := os.MkdirAll(output, 0755); err != nil {
				return err
			}

			if want("ree") || want("spider") {
				patterns, err := table.REENormalize()
				if err != nil {
					fmt.Printf("REE skipped: %v\n", err)
				} else {
					eu := patterns.EuAnomaly()
					slope := patterns.LaYbN()
					fmt.Printf("\nREE Patterns (%d elements):\n", len(patterns.Elements))
					fmt.Printf("%-8s %12s %12s\n", "Sample", "Eu/Eu*", "La/Yb_N")
					for i := range eu {
						fmt.Printf("%-8d %12.3f %12.3f\n", i+1, eu[i], slope[i])
					}
					path := filepath.Join(output, "spider.svg")
					if err := plot.WriteFile(path, patterns.SpiderSVG("Chondrite-normalized REE")); err != nil {
						return err
					}
					fmt.Printf("spider diagram written to %s\n", path)
					if normCSV {
						path = filepath.Join(output, "ree_normalized.csv")
						file, err := os.Create(path)
						if err != nil {
							return err
						}
						if err := patterns.WriteNormalizedCSV(file); err != nil {
							file.Close()
							return err
						}
						file.Close()
						fmt.Printf("normalized values written to %s\n", path)
					}
				}
			}

			if want("tas") {
				results, err := table.TAS()
				if err != nil {
					fmt.Printf("TAS skipped: %v\n", err)
				} else {
					geochem.WriteTASTable(os.Stdout, results)
					path := filepath.Join(output, "tas.svg")
					if err := plot.WriteFile(path, geochem.TASSVG(results, "TAS Classification")); err != nil {
						return err
					}
					fmt.Printf("TAS diagram written to %s\n", path)
				}
			}

			if want("ternary") && len(cols) > 0 {
				if len(cols) != 3 {
					return fmt.Errorf("--cols needs exactly three column names for a ternary plot")
				}
				svg, err := table.TernarySVG([3]string{cols[0], cols[1], cols[2]},
					strings.Join(cols, "-"))
				if err != nil {
					return err
				}
				path := filepath.Join(output, "ternary.svg")
				if err := plot.WriteFile(path, svg); err != nil {
					return err
				}
				fmt.Printf("ternary diagram written to %s\n", path)
			}

			if want("harker") {
				stats, err := table.Harker()
				if err != nil {
					fmt.Printf("Harker skipped: %v\n", err)
				} else {
					geochem.WriteHarkerTable(os.Stdout, stats)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&plots, "plot", []string{"all"}, "plots: ree, spider, tas, ternary, harker, all")
	f.StringVar(&groupCol, "group", "", "sample group column")
	f.StringSliceVar(&cols, "cols", nil, "three columns A,B,C for the ternary plot")
	f.StringVarP(&output, "output", "o", "", "output directory (default current)")
	f.BoolVar(&normCSV, "norm", false, "also write the normalized REE CSV")
	return cmd
}
