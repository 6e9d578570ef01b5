package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/config"
	"github.com/san-kum/geoforge/internal/wavefd"
)

func newWaveCmd() *cobra.Command {
	var (
		nx, nz, nt int
		dx, dtMs   float64
		f0, v0, v1 float64
		output     string
		snapshots  bool
		vtkOut     bool
		live       bool
		configFile string
		preset     string
	)
	cmd := &cobra.Command{
		Use:   "wave",
		Short: "2-D acoustic finite-difference shot modeling",
		RunE: func(cmd *cobra.Command, args []string) error {
			wcfg := config.DefaultConfig().Wave
			if preset != "" {
				p := config.GetPreset("wave", preset)
				if p == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)",
						preset, config.ListPresets("wave"))
				}
				wcfg = p.Wave
			}
			if configFile != "" {
				c, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				wcfg = c.Wave
			}
			// CLI flags override preset and file values.
			changed := cmd.Flags().Changed
			if changed("nx") {
				wcfg.NX = nx
			}
			if changed("nz") {
				wcfg.NZ = nz
			}
			if changed("nt") {
				wcfg.NT = nt
			}
			if changed("dx") {
				wcfg.DX = dx
			}
			if changed("dt") {
				wcfg.DtMs = dtMs
			}
			if changed("f0") {
				wcfg.F0 = f0
			}
			if changed("v0") {
				wcfg.V0 = v0
			}
			if changed("v1") {
				wcfg.V1 = v1
			}
			if changed("snapshots") {
				wcfg.Snapshots = snapshots
			}

			runCfg := wavefd.Config{
				NX: wcfg.NX, NZ: wcfg.NZ, NT: wcfg.NT,
				DX: wcfg.DX, DTms: wcfg.DtMs, F0: wcfg.F0,
				V0: wcfg.V0, V1: wcfg.V1,
				Snapshots:     wcfg.Snapshots || vtkOut,
				SnapshotEvery: wcfg.SnapshotEvery,
			}

			if live {
				m, err := wavefd.NewLiveModel(runCfg)
				if err != nil {
					return err
				}
				p := tea.NewProgram(m)
				_, err = p.Run()
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			res, err := wavefd.Run(ctx, runCfg)
			if err != nil {
				return err
			}
			res.WriteReport(os.Stdout, runCfg)

			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := res.WriteShotCSV(file, runCfg.DTms); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				fmt.Printf("shot record written to %s\n", output)
			}
			if vtkOut {
				for i := range res.Snapshots {
					s := &res.Snapshots[i]
					name := fmt.Sprintf("wavefield_%04d.vtk", s.Step)
					file, err := os.Create(name)
					if err != nil {
						return err
					}
					if err := res.WriteSnapshotVTK(file, s); err != nil {
						file.Close()
						return err
					}
					if err := file.Close(); err != nil {
						return err
					}
				}
				fmt.Printf("%d VTK snapshots written\n", len(res.Snapshots))
			}
			if output != "" {
				svg := res.ShotSVG("Shot record")
				svgPath := output[:len(output)-len(filepath.Ext(output))] + ".svg"
				if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
					return err
				}
				fmt.Printf("shot image written to %s\n", svgPath)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&nx, "nx", 101, "grid points in x")
	f.IntVar(&nz, "nz", 101, "grid points in z")
	f.IntVar(&nt, "nt", 500, "time steps")
	f.Float64Var(&dx, "dx", 10, "grid spacing (m)")
	f.Float64Var(&dtMs, "dt", 1, "time step (ms)")
	f.Float64Var(&f0, "f0", 10, "source dominant frequency (Hz)")
	f.Float64Var(&v0, "v0", 1500, "background velocity (m/s)")
	f.Float64Var(&v1, "v1", 2500, "anomaly velocity (m/s)")
	f.StringVar(&output, "output", "", "CSV shot-record output path")
	f.BoolVar(&snapshots, "snapshots", false, "keep wavefield snapshots")
	f.BoolVar(&vtkOut, "vtk", false, "write snapshots as VTK structured points")
	f.BoolVar(&live, "live", false, "animate the wavefield in the terminal")
	f.StringVar(&configFile, "config", "", "yaml config file")
	f.StringVar(&preset, "preset", "", "named preset configuration")
	return cmd
}
