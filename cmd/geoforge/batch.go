package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/geoforge/internal/batch"
)

func newBatchCmd() *cobra.Command {
	var (
		outputDir  string
		workers    int
		detrend    bool
		taper      float64
		filterType string
		freqMin    float64
		freqMax    float64
		decimate   int
		sampleRate float64
		watch      bool
		configFile string
	)
	cmd := &cobra.Command{
		Use:   "batch GLOB",
		Short: "process trace files in parallel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := batch.Pipeline{
				Detrend:    detrend,
				Taper:      taper,
				Filter:     filterType,
				FreqMin:    freqMin,
				FreqMax:    freqMax,
				Decimate:   decimate,
				SampleRate: sampleRate,
				OutputDir:  outputDir,
			}
			if configFile != "" {
				data, err := os.ReadFile(configFile)
				if err != nil {
					return err
				}
				var fileP batch.Pipeline
				if err := yaml.Unmarshal(data, &fileP); err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				// CLI flags override file values.
				changed := cmd.Flags().Changed
				if !changed("detrend") {
					p.Detrend = fileP.Detrend
				}
				if !changed("taper") {
					p.Taper = fileP.Taper
				}
				if !changed("filter") {
					p.Filter = fileP.Filter
				}
				if !changed("freqmin") {
					p.FreqMin = fileP.FreqMin
				}
				if !changed("freqmax") {
					p.FreqMax = fileP.FreqMax
				}
				if !changed("decimate") {
					p.Decimate = fileP.Decimate
				}
				if !changed("sample-rate") && fileP.SampleRate > 0 {
					p.SampleRate = fileP.SampleRate
				}
				if !changed("output") && fileP.OutputDir != "" {
					p.OutputDir = fileP.OutputDir
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			if watch {
				dir := filepath.Dir(args[0])
				pattern := filepath.Base(args[0])
				fmt.Printf("watching %s for %s (interrupt to stop)\n", dir, pattern)
				return batch.Watch(ctx, dir, pattern, p, workers)
			}

			files, err := batch.Discover(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("processing %d files with %d workers\n", len(files), workers)

			start := time.Now()
			results := batch.Run(ctx, files, p, workers)
			ok, failed := batch.Summary(results)

			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("  %s: %v\n", r.File, r.Err)
				}
			}
			fmt.Printf("done in %v: %d ok, %d failed\n", time.Since(start).Round(time.Millisecond), ok, failed)
			if ok == 0 && failed > 0 {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outputDir, "output", "o", "processed", "output directory")
	f.IntVar(&workers, "workers", 4, "number of worker goroutines")
	f.BoolVar(&detrend, "detrend", true, "remove a linear trend")
	f.Float64Var(&taper, "taper", 0.05, "Hann taper fraction (0 disables)")
	f.StringVar(&filterType, "filter", "", "filter: lowpass, highpass or bandpass")
	f.Float64Var(&freqMin, "freqmin", 0, "low corner frequency (Hz)")
	f.Float64Var(&freqMax, "freqmax", 0, "high corner frequency (Hz)")
	f.IntVar(&decimate, "decimate", 0, "decimation factor")
	f.Float64Var(&sampleRate, "sample-rate", 100, "sample rate for CSV inputs (Hz)")
	f.BoolVar(&watch, "watch", false, "watch the input directory for new files")
	f.StringVar(&configFile, "config", "", "yaml config file")
	return cmd
}
