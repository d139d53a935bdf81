package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsblocklist/advisorymap/internal/config"
	"github.com/mattsblocklist/advisorymap/internal/countries"
	"github.com/mattsblocklist/advisorymap/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "advisorymap",
	Short:         "Builds a snapshot and world map of the current travel advisories.",
	RunE:          runScrape,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "YAML configuration file")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, probeCmd, renderCmd)
	addRunFlags(rootCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("snapshot", "", "Output JSON snapshot path")
	flags.String("map", "", "Output map HTML path")
	flags.Int("workers", 0, "Number of concurrent destination fetches")
	flags.Duration("timeout", 0, "Per-request timeout")
}

// loadConfig reads the configuration, applies the flags that were set on the
// command line and installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	// Flags that are not defined on cmd report Changed as false.
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("snapshot") {
		cfg.Output.Snapshot, _ = flags.GetString("snapshot")
	}
	if flags.Changed("map") {
		cfg.Output.Map, _ = flags.GetString("map")
	}
	if flags.Changed("workers") {
		cfg.Source.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("timeout") {
		cfg.Source.Timeout, _ = flags.GetDuration("timeout")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func loadLookup(cfg *config.Config) (*countries.Lookup, error) {
	if cfg.ISOCodes == "" {
		return countries.Default()
	}
	return countries.LoadFile(cfg.ISOCodes)
}
