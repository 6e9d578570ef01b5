package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/plot"
	"github.com/san-kum/geoforge/internal/resist"
)

func newVESCmd() *cobra.Command {
	var (
		ab2List  string
		rhoaList string
		dataPath string
		layers   int
		lam      float64
		maxIter  int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "ves",
		Short: "invert a Schlumberger sounding for a layered earth",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				ab2, rhoa []float64
				err       error
			)
			switch {
			case dataPath != "":
				ab2, rhoa, err = loadSounding(dataPath)
				if err != nil {
					return err
				}
			case ab2List != "" && rhoaList != "":
				if ab2, err = parseFloats(ab2List); err != nil {
					return fmt.Errorf("bad --ab2: %w", err)
				}
				if rhoa, err = parseFloats(rhoaList); err != nil {
					return fmt.Errorf("bad --rhoa: %w", err)
				}
			default:
				return fmt.Errorf("either --data or --ab2 with --rhoa is required")
			}
			fmt.Printf("Sounding: %d readings, AB/2 %.2f - %.2f m\n",
				len(ab2), ab2[0], ab2[len(ab2)-1])

			res, err := resist.Invert(ab2, rhoa, resist.InvOptions{
				Layers:  layers,
				Lambda:  lam,
				MaxIter: maxIter,
			})
			if err != nil {
				return err
			}

			rule := strings.Repeat("=", 60)
			fmt.Printf("\n%s\nVES Inversion (%d layers)\n%s\n", rule, layers, rule)
			fmt.Printf("%-8s %14s %14s\n", "Layer", "Res (ohm.m)", "Thickness (m)")
			for i, r := range res.Model.Res {
				if i < len(res.Model.Thk) {
					fmt.Printf("%-8d %14.1f %14.2f\n", i+1, r, res.Model.Thk[i])
				} else {
					fmt.Printf("%-8d %14.1f %14s\n", i+1, r, "halfspace")
				}
			}
			final := res.RMSHistory[len(res.RMSHistory)-1]
			fmt.Printf("\nrms %.2f%% after %d iterations (chi2 %.2f, converged %v)\n",
				100*final, res.Iterations, res.Chi2, res.Converged)

			if output != "" {
				data, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0644); err != nil {
					return err
				}
				fmt.Printf("inversion result written to %s\n", output)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&dataPath, "data", "", "sounding CSV with ab2,rhoa columns")
	f.StringVar(&ab2List, "ab2", "", "comma-separated AB/2 spacings (m)")
	f.StringVar(&rhoaList, "rhoa", "", "comma-separated apparent resistivities (ohm.m)")
	f.IntVar(&layers, "layers", 3, "number of layers")
	f.Float64VarP(&lam, "lam", "l", 20, "initial Marquardt damping")
	f.IntVar(&maxIter, "max-iter", 20, "maximum iterations")
	f.StringVarP(&output, "output", "o", "", "JSON output path")
	return cmd
}

func newERTCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ert",
		Short: "ERT unified-data-format tools",
	}
	cmd.AddCommand(newERTCheckCmd())
	return cmd
}

func newERTCheckCmd() *cobra.Command {
	var (
		pseudoPath string
		cleanPath  string
		nx, ny     int
	)
	cmd := &cobra.Command{
		Use:   "check SURVEY.ohm",
		Short: "validate an ERT survey and render its pseudosection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resist.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Survey: %d electrodes, %d measurements\n", len(s.Electrodes), s.Size())
			fmt.Printf("Columns: %s\n", strings.Join(s.Tokens, " "))

			removed, err := s.Clean()
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Printf("removed %d invalid measurements, %d remain\n", removed, s.Size())
			} else {
				fmt.Println("all measurements valid")
			}

			ps, err := resist.BuildPseudosection(s, nx, ny)
			if err != nil {
				return err
			}
			min, max, mean := ps.Stats()
			fmt.Printf("\nApparent resistivity: min %.1f  max %.1f  mean %.1f ohm.m\n", min, max, mean)
			fmt.Println(ps.ASCII())

			if pseudoPath != "" {
				if err := plot.WriteFile(pseudoPath, ps.SVG("Pseudosection")); err != nil {
					return err
				}
				fmt.Printf("pseudosection written to %s\n", pseudoPath)
			}
			if cleanPath != "" {
				file, err := os.Create(cleanPath)
				if err != nil {
					return err
				}
				defer file.Close()
				if err := s.Write(file); err != nil {
					return err
				}
				fmt.Printf("cleaned survey written to %s\n", cleanPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&pseudoPath, "pseudosection", "", "pseudosection SVG output path")
	f.StringVar(&cleanPath, "clean", "", "write the cleaned survey to this path")
	f.IntVar(&nx, "nx", 40, "pseudosection grid columns")
	f.IntVar(&ny, "ny", 12, "pseudosection grid rows")
	return cmd
}

// loadSounding reads an ab2,rhoa CSV, skipping a non-numeric header.
func loadSounding(path string) (ab2, rhoa []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(rec) < 2 {
			continue
		}
		a, err1 := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		v, err2 := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		ab2 = append(ab2, a)
		rhoa = append(rhoa, v)
	}
	if len(ab2) == 0 {
		return nil, nil, fmt.Errorf("no ab2,rhoa rows in %s", path)
	}
	return ab2, rhoa, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
