package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/config"
	"github.com/san-kum/geoforge/internal/hydro"
)

func newHydroCmd() *cobra.Command {
	var (
		pumpPath   string
		warmup     int
		response   string
		output     string
		exportPath string
		preset     string
		configFile string
		compare    bool
		splitCheck bool
		noPlot     bool
	)
	cmd := &cobra.Command{
		Use:   "hydro HEAD.csv PRECIP.csv EVAP.csv",
		Short: "calibrate a groundwater head transfer-function model",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hcfg := config.DefaultConfig().Hydro
			if preset != "" {
				c := config.GetPreset("hydro", preset)
				if c == nil {
					return fmt.Errorf("unknown preset %q", preset)
				}
				hcfg = c.Hydro
			}
			if configFile != "" {
				c, err := config.Load(configFile)
				if err != nil {
					return err
				}
				hcfg = c.Hydro
			}
			if cmd.Flags().Changed("warmup") {
				hcfg.Warmup = warmup
			}
			if cmd.Flags().Changed("response") {
				hcfg.Response = response
			}

			head, err := hydro.LoadSeries(args[0], "head")
			if err != nil {
				return err
			}
			precip, err := hydro.LoadSeries(args[1], "precip")
			if err != nil {
				return err
			}
			evap, err := hydro.LoadSeries(args[2], "evap")
			if err != nil {
				return err
			}
			var pump *hydro.Series
			if pumpPath != "" {
				if pump, err = hydro.LoadSeries(pumpPath, "pumping"); err != nil {
					return err
				}
			}

			m, err := hydro.New(head, precip, evap, pump, hcfg.Warmup)
			if err != nil {
				return err
			}
			switch strings.ToLower(hcfg.Response) {
			case "", "gamma":
				m.Response = hydro.Gamma
			case "exponential":
				m.Response = hydro.Exponential
			default:
				return fmt.Errorf("unknown response %q", hcfg.Response)
			}

			fit, err := m.Calibrate()
			if err != nil {
				return err
			}
			m.WriteReport(os.Stdout, fit)

			if compare {
				fits, err := m.CompareResponses(hydro.Gamma, hydro.Exponential)
				if err != nil {
					return err
				}
				m.WriteComparison(os.Stdout, fits)
			}
			if splitCheck {
				cal, val, err := m.SplitSample()
				if err != nil {
					return err
				}
				fmt.Printf("\nSplit-Sample Check:\n")
				fmt.Printf("  calibration EVP %.1f%%  RMSE %.4f\n", cal.EVP, cal.RMSE)
				fmt.Printf("  validation  EVP %.1f%%  RMSE %.4f\n", val.EVP, val.RMSE)
			}
			if !noPlot {
				fmt.Println()
				fmt.Println(m.ObservedVsSimulatedASCII(fit))
			}

			if output != "" {
				if err := hydro.WriteJSON(output, fit); err != nil {
					return err
				}
				fmt.Printf("model written to %s\n", output)
			}
			if exportPath != "" {
				file, err := os.Create(exportPath)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := m.ExportCSV(file, fit); err != nil {
					return err
				}
				fmt.Printf("simulation written to %s\n", exportPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&pumpPath, "pumping", "", "daily pumping series CSV")
	f.IntVar(&warmup, "warmup", 365, "warmup period (days)")
	f.StringVar(&response, "response", "gamma", "recharge response: gamma|exponential")
	f.StringVarP(&output, "output", "o", "", "fit result JSON output path")
	f.StringVar(&exportPath, "export", "", "simulation CSV output path")
	f.StringVar(&preset, "preset", "", "named parameter preset")
	f.StringVar(&configFile, "config", "", "YAML config file")
	f.BoolVar(&compare, "compare", false, "compare response functions by AIC")
	f.BoolVar(&splitCheck, "split-sample", false, "run the split-sample check")
	f.BoolVar(&noPlot, "no-plot", false, "skip the observed vs simulated ascii plot")
	return cmd
}
