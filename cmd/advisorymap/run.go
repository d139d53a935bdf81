package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mattsblocklist/advisorymap/internal/output"
	"github.com/mattsblocklist/advisorymap/internal/pipeline"
	"github.com/mattsblocklist/advisorymap/internal/scrapers"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrapes the advisory site and writes the snapshot and map.",
	RunE:  runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lookup, err := loadLookup(cfg)
	if err != nil {
		return err
	}
	slog.Debug("loaded iso codes", "names", lookup.Len())

	httpClient := &http.Client{
		Timeout: cfg.Source.Timeout,
	}
	source := scrapers.NewTravelScraper(cfg.Source.RootURL, httpClient, cfg.Source.UserAgent)

	results, report, err := pipeline.New(source, lookup, pipeline.OptionsFromConfig(cfg)).Run(cmd.Context())
	if err != nil {
		return err
	}

	if err := output.WriteAll(cfg.Output.Snapshot, cfg.Output.Map, results); err != nil {
		return fmt.Errorf("error writing outputs: %w", err)
	}

	out := cmd.OutOrStdout()
	report.Render(out)

	fmt.Fprintf(out, "\nOutput written to:\n")
	fmt.Fprintf(out, "  - %s\n", cfg.Output.Snapshot)
	fmt.Fprintf(out, "  - %s\n", cfg.Output.Map)

	return nil
}
