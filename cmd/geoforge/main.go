// geoforge is a multi-command geoscience analysis toolkit: seismic
// modeling and AVO, well-log I/O and evaluation, geostatistics,
// potential fields, electrical methods, hydrology and assorted
// project tooling, all behind one binary.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "geoforge",
		Short:        "geoscience analysis toolkit",
		SilenceUsage: true,
	}

	root.AddCommand(
		newAVOCmd(),
		newDeconvCmd(),
		newWaveCmd(),
		newLasCmd(),
		newSegyCmd(),
		newVarioCmd(),
		newKrigeCmd(),
		newGridCmd(),
		newBatchCmd(),
		newFetchEventCmd(),
		newGravityCmd(),
		newStereoCmd(),
		newStriplogCmd(),
		newMTCmd(),
		newVESCmd(),
		newERTCmd(),
		newClimateCmd(),
		newHydroCmd(),
		newErodeCmd(),
		newGPRCmd(),
		newGeochemCmd(),
		newRegistryCmd(),
		newSkillsCmd(),
		newGeomodelCmd(),
		newMeshCmd(),
		newCatalogCmd(),
		newPresetsCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [command]",
		Short: "list available presets for a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for command: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}
}
