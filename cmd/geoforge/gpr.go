package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/gpr"
	"github.com/san-kum/geoforge/internal/plot"
)

func newGPRCmd() *cobra.Command {
	var (
		velocity    float64
		dewowWindow float64
		bgTraces    int
		gainPower   float64
		agcWindow   float64
		dtNs        float64
		output      string
		exports     []string
		noPlot      bool
	)
	cmd := &cobra.Command{
		Use:   "gpr FILE",
		Short: "process a GPR profile (dewow, background removal, gain)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := gpr.Load(args[0], dtNs)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %s: %d traces x %d samples\n",
				args[0], p.NumTraces(), p.NumSamples())

			if dewowWindow > 0 {
				if err := p.Dewow(dewowWindow); err != nil {
					return err
				}
			}
			if bgTraces > 0 {
				p.RemoveBackground(bgTraces)
			}
			if gainPower > 0 {
				p.Gain(gainPower)
			}
			if agcWindow > 0 {
				if err := p.AGC(agcWindow); err != nil {
					return err
				}
			}
			if velocity > 0 {
				if err := p.SetVelocity(velocity); err != nil {
					return err
				}
			}

			var outputs []string
			if len(exports) > 0 {
				if output == "" {
					output = "."
				}
				if err := os.MkdirAll(output, 0755); err != nil {
					return err
				}
				stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				for _, kind := range exports {
					path := filepath.Join(output, stem+"_proc."+kind)
					switch kind {
					case "csv":
						file, err := os.Create(path)
						if err != nil {
							return err
						}
						if err := p.WriteCSV(file); err != nil {
							file.Close()
							return err
						}
						file.Close()
					case "sgy", "segy":
						if err := p.ExportSEGY(path); err != nil {
							return err
						}
					case "svg":
						if err := plot.WriteFile(path, p.RadargramSVG("Radargram")); err != nil {
							return err
						}
					default:
						return fmt.Errorf("unknown export format %q (csv, sgy, svg)", kind)
					}
					outputs = append(outputs, path)
				}
			}

			p.WriteReport(os.Stdout, outputs)
			if !noPlot {
				fmt.Println(p.RadargramASCII())
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&velocity, "velocity", 0.1, "radar velocity (m/ns) for depth conversion; 0 skips")
	f.Float64Var(&dewowWindow, "dewow-window", 10, "dewow running-mean window (ns); 0 skips")
	f.IntVar(&bgTraces, "background-traces", 0, "background removal window (traces); 0 skips")
	f.Float64Var(&gainPower, "gain-power", 1.5, "t-power gain exponent; 0 skips")
	f.Float64Var(&agcWindow, "agc-window", 0, "AGC window (ns); 0 skips")
	f.Float64Var(&dtNs, "dt-ns", 0.5, "sample interval (ns) for CSV input")
	f.StringVarP(&output, "output", "o", "", "output directory for exports")
	f.StringSliceVar(&exports, "export", nil, "export formats: csv, sgy, svg")
	f.BoolVar(&noPlot, "no-plot", false, "skip the ascii radargram")
	return cmd
}
