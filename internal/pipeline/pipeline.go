// Package pipeline drives a scraping run: list the destinations, resolve
// their ISO codes, classify each destination page and assemble the result set.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
	"github.com/mattsblocklist/advisorymap/internal/config"
	"github.com/mattsblocklist/advisorymap/internal/scrapers"
)

// Source lists destinations and reads their risk banners.
type Source interface {
	Countries(ctx context.Context, skip map[string]bool) ([]scrapers.Country, error)
	RiskText(ctx context.Context, slug string) (text string, ok bool, err error)
}

// Resolver maps a display name to an ISO code.
type Resolver interface {
	Resolve(name string) (code string, ok bool)
}

// Options tune a run.
type Options struct {
	Skip      map[string]bool
	Synthetic []advisory.Entry // LastUpdated is stamped at insertion
	Workers   int
	Timeout   time.Duration // per request
	Now       func() time.Time
}

// OptionsFromConfig builds run options from the application configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	synthetic := make([]advisory.Entry, 0, len(cfg.Synthetic))
	for _, s := range cfg.Synthetic {
		synthetic = append(synthetic, advisory.Entry{
			DisplayName: s.DisplayName,
			Directory:   s.Directory,
			IsoCode:     s.IsoCode,
			Level:       s.Level,
		})
	}

	return Options{
		Skip:      cfg.SkipSet(),
		Synthetic: synthetic,
		Workers:   cfg.Source.Workers,
		Timeout:   cfg.Source.Timeout,
	}
}

// Pipeline composes a Source and a Resolver into a run.
type Pipeline struct {
	source Source
	lookup Resolver
	opts   Options
}

// New creates a pipeline.
func New(source Source, lookup Resolver, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{
		source: source,
		lookup: lookup,
		opts:   opts,
	}
}

// outcome is the result of processing one listed country.
type outcome struct {
	entry   advisory.Entry
	skipped *Skipped
}

// Run executes the pipeline. Only a failure to obtain the listing is returned
// as an error; per-country failures are logged and recorded in the report.
func (p *Pipeline) Run(ctx context.Context) (*advisory.ResultSet, *Report, error) {
	report := &Report{Started: p.opts.Now()}

	listCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	countries, err := p.source.Countries(listCtx, p.opts.Skip)
	cancel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list countries: %w", err)
	}
	report.Listed = len(countries)
	slog.InfoContext(ctx, "listed countries", "count", len(countries), "workers", p.opts.Workers)

	// Outcomes are collected by listing index and merged afterwards so that
	// overwrites happen in listing order regardless of scheduling.
	outcomes := make([]outcome, len(countries))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, country := range countries {
		i, country := i, country
		g.Go(func() error {
			outcomes[i] = p.process(ctx, country)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	results := advisory.NewResultSet()
	for _, o := range outcomes {
		if o.skipped != nil {
			report.skip(ctx, *o.skipped)
			continue
		}
		report.put(ctx, results, o.entry)
		report.Added++
	}

	now := p.opts.Now()
	for _, e := range p.opts.Synthetic {
		e.LastUpdated = now
		report.put(ctx, results, e)
		report.Synthetic++
	}

	report.Duration = p.opts.Now().Sub(report.Started)
	slog.InfoContext(ctx, "run complete",
		"entries", results.Len(),
		"skipped", len(report.Skipped),
		"duplicates", len(report.Duplicates),
		"duration", report.Duration)

	return results, report, nil
}

func (p *Pipeline) process(ctx context.Context, country scrapers.Country) outcome {
	code, ok := p.lookup.Resolve(country.Name)
	if !ok {
		return outcome{skipped: &Skipped{Country: country, Reason: SkipNoISOCode}}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	text, found, err := p.source.RiskText(fetchCtx, country.Slug)
	if err != nil {
		return outcome{skipped: &Skipped{Country: country, Code: code, Reason: SkipFetchFailed, Err: err}}
	}

	level := advisory.Invalid
	if found {
		level = advisory.Classify(text)
	}
	if level == advisory.Invalid {
		return outcome{skipped: &Skipped{Country: country, Code: code, Reason: SkipNoLevel}}
	}

	slog.DebugContext(ctx, "classified", "country", country.Name, "code", code, "level", level.String())

	return outcome{entry: advisory.Entry{
		DisplayName: country.Name,
		Directory:   country.Slug,
		IsoCode:     code,
		Level:       level,
		LastUpdated: p.opts.Now(),
	}}
}
