package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/mt"
)

func newMTCmd() *cobra.Command {
	var (
		recursive  bool
		exportPath string
		showPlot   bool
	)
	cmd := &cobra.Command{
		Use:   "mt FILE.edi",
		Short: "magnetotelluric EDI impedance QC and apparent resistivity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := []string{args[0]}
			if recursive {
				matches, err := filepath.Glob(filepath.Join(args[0], "*.edi"))
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					return fmt.Errorf("no EDI files under %s", args[0])
				}
				files = matches
			}

			failed := 0
			for _, path := range files {
				site, err := mt.Load(path)
				if err != nil {
					fmt.Printf("%s: %v\n", path, err)
					failed++
					continue
				}
				rep := mt.Analyze(site)
				rep.Write(os.Stdout, path)

				if showPlot {
					fmt.Println()
					fmt.Println(mt.SoundingASCII(site))
				}
				if exportPath != "" {
					out := exportPath
					if recursive {
						base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
						out = filepath.Join(exportPath, base+".csv")
						if err := os.MkdirAll(exportPath, 0755); err != nil {
							return err
						}
					}
					file, err := os.Create(out)
					if err != nil {
						return err
					}
					if err := mt.ExportCSV(file, site); err != nil {
						file.Close()
						return err
					}
					if err := file.Close(); err != nil {
						return err
					}
					fmt.Printf("exported %s\n", out)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&recursive, "recursive", "r", false, "treat the argument as a directory of EDI files")
	f.StringVar(&exportPath, "export", "", "CSV export path (directory in recursive mode)")
	f.BoolVar(&showPlot, "plot", false, "print the ascii sounding curve")
	return cmd
}
