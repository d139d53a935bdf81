package pipeline

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mattsblocklist/advisorymap/internal/advisory"
	"github.com/mattsblocklist/advisorymap/internal/scrapers"
)

// SkipReason says why a listed country is missing from the result set.
type SkipReason string

const (
	SkipNoISOCode   SkipReason = "no ISO code"
	SkipFetchFailed SkipReason = "fetch failed"
	SkipNoLevel     SkipReason = "no advisory level"
)

// Skipped records a listed country that produced no entry.
type Skipped struct {
	Country scrapers.Country
	Code    string
	Reason  SkipReason
	Err     error
}

// Duplicate records an entry that replaced another under the same code.
type Duplicate struct {
	Code        string
	Previous    string
	Replacement string
}

// Report summarises a run for the operator.
type Report struct {
	Started    time.Time
	Duration   time.Duration
	Listed     int
	Added      int
	Synthetic  int
	Skipped    []Skipped
	Duplicates []Duplicate
}

func (r *Report) skip(ctx context.Context, s Skipped) {
	attrs := []any{"country", s.Country.Name, "slug", s.Country.Slug, "reason", string(s.Reason)}
	if s.Err != nil {
		attrs = append(attrs, "error", s.Err)
	}
	switch s.Reason {
	case SkipNoISOCode:
		slog.WarnContext(ctx, "can't find ISO code", attrs...)
	case SkipNoLevel:
		slog.WarnContext(ctx, "can't find advisory level", attrs...)
	default:
		slog.WarnContext(ctx, "can't fetch destination", attrs...)
	}
	r.Skipped = append(r.Skipped, s)
}

func (r *Report) put(ctx context.Context, results *advisory.ResultSet, e advisory.Entry) {
	previous, replaced := results.Put(e)
	if !replaced {
		return
	}

	slog.WarnContext(ctx, "duplicate iso code", "code", e.IsoCode, "previous", previous.DisplayName, "replacement", e.DisplayName)
	r.Duplicates = append(r.Duplicates, Duplicate{
		Code:        e.IsoCode,
		Previous:    previous.DisplayName,
		Replacement: e.DisplayName,
	})
}

// Render writes the report as tables to w.
func (r *Report) Render(w io.Writer) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetTitle("Advisory run")
	summary.AppendHeader(table.Row{"Listed", "Added", "Synthetic", "Skipped", "Duplicates", "Duration"})
	summary.AppendRow(table.Row{r.Listed, r.Added, r.Synthetic, len(r.Skipped), len(r.Duplicates), r.Duration.Round(time.Millisecond)})
	summary.SetStyle(table.StyleRounded)
	summary.Render()

	if len(r.Skipped) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Skipped")
		t.AppendHeader(table.Row{"Country", "Slug", "Code", "Reason", "Error"})
		for _, s := range r.Skipped {
			errText := ""
			if s.Err != nil {
				errText = s.Err.Error()
			}
			t.AppendRow(table.Row{s.Country.Name, s.Country.Slug, s.Code, string(s.Reason), errText})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}

	if len(r.Duplicates) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetTitle("Duplicate codes")
		t.AppendHeader(table.Row{"Code", "Previous", "Replacement"})
		for _, d := range r.Duplicates {
			t.AppendRow(table.Row{d.Code, d.Previous, d.Replacement})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
}
