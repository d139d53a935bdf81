package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsblocklist/advisorymap/internal/output"
)

var renderCmd = &cobra.Command{
	Use:   "render <snapshot.json>",
	Short: "Re-renders the map from a saved snapshot without scraping.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		results, err := output.ReadSnapshot(args[0])
		if err != nil {
			return err
		}

		if err := output.WriteMap(cfg.Output.Map, results); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Map of %d entries written to %s\n", results.Len(), cfg.Output.Map)
		return nil
	},
}

func init() {
	renderCmd.Flags().String("map", "", "Output map HTML path")
}
