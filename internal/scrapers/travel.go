package scrapers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// TravelScraper reads the country listing and destination pages of the
// travel advisory site rooted at URL().
type TravelScraper struct {
	*BaseScraper
}

// NewTravelScraper creates a scraper for the site at rootURL.
func NewTravelScraper(rootURL string, client *http.Client, userAgent string) *TravelScraper {
	return &TravelScraper{
		BaseScraper: NewBaseScraper(
			"Travel Advice and Advisories",
			strings.TrimSuffix(rootURL, "/"),
			client,
			userAgent,
		),
	}
}

// DestinationURL returns the page URL for a destination slug.
func (s *TravelScraper) DestinationURL(slug string) string {
	return fmt.Sprintf("%s/destinations/%s", s.url, url.PathEscape(slug))
}

// Countries fetches the home page and extracts the destinations it lists.
func (s *TravelScraper) Countries(ctx context.Context, skip map[string]bool) ([]Country, error) {
	doc, hash, err := s.FetchDocument(ctx, s.url+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	slog.DebugContext(ctx, "fetched listing", "url", s.url, "content_hash", hash)

	return ExtractCountries(doc, skip)
}

// RiskText fetches a destination page and returns its risk banner text.
// ok is false when the page has no banner.
func (s *TravelScraper) RiskText(ctx context.Context, slug string) (text string, ok bool, err error) {
	link := s.DestinationURL(slug)

	doc, hash, err := s.FetchDocument(ctx, link)
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	slog.DebugContext(ctx, "fetched destination", "url", link, "content_hash", hash)

	text, ok = ExtractRiskText(doc)
	return text, ok, nil
}
