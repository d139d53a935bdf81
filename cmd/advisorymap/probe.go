package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
	"github.com/mattsblocklist/advisorymap/internal/scrapers"
)

var probeCmd = &cobra.Command{
	Use:   "probe <slug>",
	Short: "Fetches a single destination page and prints its advisory level.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		source := scrapers.NewTravelScraper(cfg.Source.RootURL, &http.Client{Timeout: cfg.Source.Timeout}, cfg.Source.UserAgent)

		slug := args[0]
		text, ok, err := source.RiskText(cmd.Context(), slug)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "URL:    %s\n", source.DestinationURL(slug))
		if !ok {
			fmt.Fprintln(out, "Banner: (not found)")
			return fmt.Errorf("no risk banner on %s", slug)
		}

		level := advisory.Classify(text)
		fmt.Fprintf(out, "Banner: %q\n", text)
		fmt.Fprintf(out, "Level:  %s (%d)\n", level, int(level))
		return nil
	},
}
