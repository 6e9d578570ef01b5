package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/catalog"
	"github.com/san-kum/geoforge/internal/geomodel"
	"github.com/san-kum/geoforge/internal/registry"
	"github.com/san-kum/geoforge/internal/skills"
	"github.com/san-kum/geoforge/internal/vtk"
)

func newRegistryCmd() *cobra.Command {
	var (
		output    string
		algorithm string
		recursive bool
		excludes  []string
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "registry DIR",
		Short: "build a hash registry for a data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := registry.Build(args[0], registry.Options{
				Algorithm: algorithm,
				Recursive: recursive,
				Excludes:  excludes,
				Workers:   workers,
			})
			if err != nil {
				return err
			}
			if output == "" {
				return registry.Write(os.Stdout, entries)
			}
			if err := registry.WriteFile(output, entries); err != nil {
				return err
			}
			fmt.Printf("%d entries written to %s\n", len(entries), output)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", "", "registry file (default stdout)")
	f.StringVarP(&algorithm, "algorithm", "a", "sha256", "hash algorithm: sha256|md5")
	f.BoolVarP(&recursive, "recursive", "r", false, "walk subdirectories")
	f.StringSliceVar(&excludes, "exclude", nil, "glob patterns to skip")
	f.IntVar(&workers, "workers", 4, "hashing goroutines")
	cmd.AddCommand(newRegistryVerifyCmd())
	return cmd
}

func newRegistryVerifyCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "verify DIR REGISTRY",
		Short: "compare a directory against a registry file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := registry.ParseFile(args[1])
			if err != nil {
				return err
			}
			rep, err := registry.Verify(args[0], entries, registry.Options{Recursive: recursive})
			if err != nil {
				return err
			}
			rep.WriteReport(os.Stdout)
			if !rep.Clean() {
				return fmt.Errorf("registry verification failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "walk subdirectories")
	return cmd
}

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills [ROOT]",
		Short: "lint skill bundle metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			rep, err := skills.Lint(root)
			if err != nil {
				return err
			}
			rep.WriteReport(os.Stdout)
			if rep.Errors() > 0 {
				return fmt.Errorf("%d errors", rep.Errors())
			}
			return nil
		},
	}
	return cmd
}

func newGeomodelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geomodel",
		Short: "structural model input tools",
	}
	cmd.AddCommand(newGeomodelValidateCmd())
	return cmd
}

func newGeomodelValidateCmd() *cobra.Command {
	var extentStr string
	cmd := &cobra.Command{
		Use:   "validate POINTS.csv ORIENTATIONS.csv",
		Short: "validate interface points and orientations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var extent *[6]float64
			if extentStr != "" {
				e, err := geomodel.ParseExtent(extentStr)
				if err != nil {
					return err
				}
				extent = &e
			}
			if !geomodel.Validate(os.Stdout, args[0], args[1], extent) {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&extentStr, "extent", "", "model extent x0,x1,y0,y1,z0,z1")
	return cmd
}

func newMeshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "mesh file tools",
	}
	info := &cobra.Command{
		Use:   "info FILE.vtk",
		Short: "describe a legacy VTK file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inf, err := vtk.ReadInfo(args[0])
			if err != nil {
				return err
			}
			inf.Describe(os.Stdout)
			return nil
		},
	}
	cmd.AddCommand(info)
	return cmd
}

func newCatalogCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "project well catalog backed by sqlite",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "catalog.db", "catalog database path")

	scan := &cobra.Command{
		Use:   "scan GLOB",
		Short: "index LAS files matching a glob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			res, err := store.Scan(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("scanned %d files (%d unchanged, %d failed)\n",
				res.Scanned, res.Skipped, res.Failed)
			return nil
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "list indexed wells",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			wells, err := store.ListWells()
			if err != nil {
				return err
			}
			catalog.WriteWellTable(os.Stdout, wells)
			return nil
		},
	}
	var mnem string
	curves := &cobra.Command{
		Use:   "curves",
		Short: "show which wells carry a curve",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			rows, err := store.CurveAvailability(mnem)
			if err != nil {
				return err
			}
			catalog.WriteCurveTable(os.Stdout, rows)
			return nil
		},
	}
	curves.Flags().StringVar(&mnem, "mnem", "", "curve mnemonic (empty lists all)")
	stats := &cobra.Command{
		Use:   "stats",
		Short: "catalog summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := catalog.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			st, err := store.Stats()
			if err != nil {
				return err
			}
			catalog.WriteStats(os.Stdout, st)
			return nil
		},
	}
	cmd.AddCommand(scan, list, curves, stats)
	return cmd
}
