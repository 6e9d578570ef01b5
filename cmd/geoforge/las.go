package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/las"
	"github.com/san-kum/geoforge/internal/petro"
)

func newLasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "las",
		Short: "LAS 2.0 well-log tools",
	}
	cmd.AddCommand(
		newLasConvertCmd(),
		newLasValidateCmd(),
		newLasMergeCmd(),
		newLasQCCmd(),
		newLasStatsCmd(),
		newLasEvalCmd(),
	)
	return cmd
}

func loadLAS(path string) (*las.File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := las.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// discoverLAS lists .las files under a file or directory path.
func discoverLAS(path string, recursive bool) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	pattern := filepath.Join(path, "*.las")
	if recursive {
		pattern = filepath.Join(path, "**", "*.las")
	}
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no LAS files found under %s", path)
	}
	return matches, nil
}

func newLasConvertCmd() *cobra.Command {
	var (
		curves    []string
		keepNull  bool
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "convert INPUT [OUTPUT]",
		Short: "convert LAS files to CSV",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := discoverLAS(args[0], false)
			if err != nil {
				return err
			}
			single := len(files) == 1 && files[0] == args[0]

			for _, path := range files {
				f, err := loadLAS(path)
				if err != nil {
					if single {
						return err
					}
					fmt.Printf("skipping %s: %v\n", path, err)
					continue
				}

				out := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
				if single && len(args) == 2 {
					out = args[1]
				}
				if outputDir != "" {
					if err := os.MkdirAll(outputDir, 0755); err != nil {
						return err
					}
					out = filepath.Join(outputDir, filepath.Base(out))
				}

				file, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := las.ToCSV(file, f, curves, keepNull); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Printf("%s -> %s\n", path, out)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&curves, "curves", "c", nil, "specific curves to include")
	f.BoolVar(&keepNull, "keep-null", false, "keep null values instead of blank cells")
	f.StringVarP(&outputDir, "output-dir", "o", "", "output directory for batch conversion")
	return cmd
}

func newLasValidateCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "validate PATH",
		Short: "validate LAS files against the 2.0 conventions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := discoverLAS(args[0], false)
			if err != nil {
				return err
			}
			invalid := 0
			for _, path := range files {
				f, err := loadLAS(path)
				if err != nil {
					fmt.Printf("%s: PARSE ERROR: %v\n", path, err)
					invalid++
					continue
				}
				rep := las.Validate(f)
				clean := len(rep.Errors) == 0 && len(rep.Warnings) == 0
				if quiet && clean {
					continue
				}
				fmt.Printf("\n%s (LAS %s, %d curves, %d samples)\n",
					path, rep.Version, rep.NCurves, rep.NSamples)
				for _, e := range rep.Errors {
					fmt.Printf("  ERROR: %s\n", e)
				}
				for _, w := range rep.Warnings {
					fmt.Printf("  WARNING: %s\n", w)
				}
				if clean {
					fmt.Println("  No issues found.")
				}
				if !rep.Valid {
					invalid++
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d files invalid", invalid, len(files))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only show files with issues")
	return cmd
}

func newLasMergeCmd() *cobra.Command {
	var (
		output     string
		resample   float64
		depthCurve string
	)
	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "merge curves from multiple LAS files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []*las.File
			for _, path := range args {
				f, err := loadLAS(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}
			merged, err := las.Merge(files, resample, depthCurve)
			if err != nil {
				return err
			}
			out, err := os.Create(output)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := las.Write(out, merged); err != nil {
				return err
			}
			fmt.Printf("merged %d files, %d curves -> %s\n",
				len(files), len(merged.Curves), output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "output LAS file")
	f.Float64Var(&resample, "resample", 0, "resample to this depth step")
	f.StringVar(&depthCurve, "depth-curve", "", "name of the depth curve")
	cmd.MarkFlagRequired("output")
	return cmd
}

func newLasQCCmd() *cobra.Command {
	var (
		recursive bool
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "qc PATH",
		Short: "per-curve quality report for LAS files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := discoverLAS(args[0], recursive)
			if err != nil {
				return err
			}
			withIssues := 0
			for _, path := range files {
				f, err := loadLAS(path)
				if err != nil {
					fmt.Printf("%s: PARSE ERROR: %v\n", path, err)
					withIssues++
					continue
				}
				rep := las.QC(f)
				if quiet && len(rep.Errors) == 0 && len(rep.Warnings) == 0 {
					continue
				}
				printQCReport(path, rep)
				if len(rep.Errors) > 0 {
					withIssues++
				}
			}
			if withIssues > 0 {
				return fmt.Errorf("%d of %d files with errors", withIssues, len(files))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recursively search directories")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only show files with issues")
	return cmd
}

func printQCReport(path string, rep *las.QCReport) {
	rule := strings.Repeat("=", 60)
	fmt.Printf("\n%s\nQC: %s\n%s\n", rule, path, rule)
	fmt.Printf("Well: %s  UWI: %s\n", rep.WellName, rep.UWI)
	fmt.Printf("Depth: %.2f - %.2f, step %.4f\n", rep.DepthStart, rep.DepthStop, rep.DepthStep)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CURVE\tUNIT\tSAMPLES\tNULL%\tMIN\tMAX\tMEAN\tSTD\tGAPS")
	for _, c := range rep.Curves {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%s\t%s\t%s\t%s\t%d\n",
			c.Mnem, c.Unit, c.Samples, c.NullPct,
			fmtStat(c.Min), fmtStat(c.Max), fmtStat(c.Mean), fmtStat(c.Std), c.NGaps)
	}
	w.Flush()

	for _, e := range rep.Errors {
		fmt.Printf("ERROR: %s\n", e)
	}
	for _, warn := range rep.Warnings {
		fmt.Printf("WARNING: %s\n", warn)
	}
	if len(rep.Errors) == 0 && len(rep.Warnings) == 0 {
		fmt.Println("No issues found.")
	}
}

func fmtStat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.3f", v)
}

func newLasStatsCmd() *cobra.Command {
	var (
		curves      []string
		output      string
		recursive   bool
		summaryOnly bool
	)
	cmd := &cobra.Command{
		Use:   "stats DIR",
		Short: "project-level statistics across LAS files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := discoverLAS(args[0], recursive)
			if err != nil {
				return err
			}
			var wells []las.WellStats
			for _, path := range files {
				f, err := loadLAS(path)
				if err != nil {
					wells = append(wells, las.WellStats{Path: path, Err: err})
					continue
				}
				wells = append(wells, las.ComputeWellStats(path, f, curves))
			}
			summary := las.Summarize(wells)

			if !summaryOnly {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "WELL\tSTART\tSTOP\tCURVES\tSAMPLES")
				for _, ws := range wells {
					if ws.Err != nil {
						fmt.Fprintf(w, "%s\t(failed: %v)\t\t\t\n", filepath.Base(ws.Path), ws.Err)
						continue
					}
					fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%d\t%d\n",
						ws.Name, ws.DepthStart, ws.DepthStop, ws.NCurves, ws.NSamples)
				}
				w.Flush()
				fmt.Println()
			}

			fmt.Printf("Wells: %d (%d readable)\n", summary.NWells, summary.NValid)
			fmt.Printf("Depth: %.1f - %.1f (mean range %.1f)\n",
				summary.DepthStartMin, summary.DepthStopMax, summary.DepthRangeMean)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CURVE\tWELLS\tMEAN(MEANS)\tSTD(MEANS)\tGLOBAL MIN\tGLOBAL MAX")
			for _, name := range summary.CurveNames {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
					name, summary.CurveWells[name],
					fmtStat(summary.MeanOfMeans[name]), fmtStat(summary.StdOfMeans[name]),
					fmtStat(summary.GlobalMin[name]), fmtStat(summary.GlobalMax[name]))
			}
			w.Flush()

			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := las.StatsToCSV(file, wells, summary.CurveNames); err != nil {
					return err
				}
				fmt.Printf("\nstatistics written to %s\n", output)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&curves, "curves", "c", nil, "specific curves to analyze")
	f.StringVarP(&output, "output", "o", "", "CSV output for well statistics")
	f.BoolVarP(&recursive, "recursive", "r", false, "recursively search directories")
	f.BoolVarP(&summaryOnly, "summary-only", "s", false, "only print the project summary")
	return cmd
}

func newLasEvalCmd() *cobra.Command {
	var (
		configPath string
		report     bool
	)
	cmd := &cobra.Command{
		Use:   "eval INPUT [OUTPUT]",
		Short: "formation evaluation (VSH, porosity, Sw, permeability, pay)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadLAS(args[0])
			if err != nil {
				return err
			}
			params := petro.DefaultParams()
			if configPath != "" {
				params, err = petro.LoadParams(configPath)
				if err != nil {
					return err
				}
			}
			summary, err := petro.Evaluate(f, params)
			if err != nil {
				return err
			}

			for _, step := range summary.Steps {
				fmt.Println(step)
			}
			if report {
				rule := strings.Repeat("=", 60)
				fmt.Printf("\n%s\nNET PAY SUMMARY\n%s\n", rule, rule)
				fmt.Printf("Gross interval:    %.2f m\n", summary.Gross)
				fmt.Printf("Net pay:           %.2f m\n", summary.NetPay)
				fmt.Printf("Net-to-gross:      %.3f\n", summary.NetToGross)
				fmt.Printf("Pay mean PHIE:     %.3f\n", summary.PayPhiMean)
				fmt.Printf("Pay mean SW:       %.3f\n", summary.PaySwMean)
				fmt.Printf("Pay mean VSH:      %.3f\n", summary.PayVshMean)
				fmt.Printf("Mean permeability: %.2f mD\n", summary.PermMean)
			}

			out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_eval.las"
			if len(args) == 2 {
				out = args[1]
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := las.Write(file, f); err != nil {
				return err
			}
			fmt.Printf("\nevaluated log written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON parameter file")
	cmd.Flags().BoolVar(&report, "report", false, "print the net pay summary")
	return cmd
}
