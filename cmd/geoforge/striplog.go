package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/striplog"
)

func newStriplogCmd() *cobra.Command {
	var (
		csvPath    string
		text       string
		output     string
		exportPath string
		summary    bool
	)
	cmd := &cobra.Command{
		Use:   "striplog",
		Short: "build and report a lithology interval log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				log      *striplog.Log
				warnings []string
				err      error
			)
			switch {
			case csvPath != "":
				log, warnings, err = striplog.LoadCSV(csvPath)
			case text != "":
				log, warnings, err = striplog.FromText(text)
			default:
				return fmt.Errorf("either --csv or --text is required")
			}
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Printf("WARNING: %s\n", w)
			}
			for _, issue := range log.Validate() {
				fmt.Printf("ISSUE: %s\n", issue)
			}

			fmt.Printf("Striplog: %d intervals, %.2f - %.2f\n",
				len(log.Intervals), log.Start(), log.Stop())
			log.ASCII(os.Stdout, 30)
			if summary {
				log.WriteSummary(os.Stdout)
			}

			if output != "" {
				if err := plot.WriteFile(output, log.SVG("Striplog")); err != nil {
					return err
				}
				fmt.Printf("strip column written to %s\n", output)
			}
			if exportPath != "" {
				file, err := os.Create(exportPath)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := log.WriteJSON(file); err != nil {
					return err
				}
				fmt.Printf("JSON written to %s\n", exportPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&csvPath, "csv", "", "interval CSV (top,base,lithology)")
	f.StringVar(&text, "text", "", "free-text description, e.g. \"0-10: sandstone, 10-12: shale\"")
	f.StringVarP(&output, "output", "o", "", "SVG strip column output path")
	f.StringVar(&exportPath, "export", "", "JSON output path")
	f.BoolVar(&summary, "summary", false, "print the thickness summary")
	return cmd
}
