package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/stereo"
)

func newStereoCmd() *cobra.Command {
	var (
		contour    bool
		planes     bool
		showStats  bool
		output     string
		exportPath string
	)
	cmd := &cobra.Command{
		Use:   "stereo DATA.csv",
		Short: "orientation statistics and stereonet plotting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, warnings, err := stereo.LoadCSV(args[0])
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Printf("WARNING: %s\n", w)
			}
			fmt.Printf("Loaded %d measurements\n", len(ms))

			groups, byGroup := stereo.GroupBy(ms)
			results := make(map[string]*stereo.Stats, len(groups))
			for _, g := range groups {
				st, err := stereo.Analyze(byGroup[g])
				if err != nil {
					fmt.Printf("%s: %v\n", g, err)
					continue
				}
				results[g] = st
				stereo.WriteReport(os.Stdout, g, st)
			}
			if len(groups) > 1 {
				if st, err := stereo.Analyze(ms); err == nil {
					stereo.WriteReport(os.Stdout, "all", st)
				}
			}

			if output != "" {
				svg := stereo.StereonetSVG(ms, stereo.NetOptions{
					Title:   "Stereonet",
					Planes:  planes,
					Contour: contour,
					Stats:   showStats,
				})
				if err := plot.WriteFile(output, svg); err != nil {
					return err
				}
				fmt.Printf("stereonet written to %s\n", output)
			}

			if exportPath != "" {
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(exportPath, data, 0644); err != nil {
					return err
				}
				fmt.Printf("results written to %s\n", exportPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&contour, "contour", false, "density shading behind the poles")
	f.BoolVar(&planes, "planes", false, "draw great circles for every measurement")
	f.BoolVar(&showStats, "stats", false, "draw the mean pole and girdle")
	f.StringVarP(&output, "output", "o", "", "stereonet SVG output path")
	f.StringVar(&exportPath, "export", "", "JSON results output path")
	return cmd
}
