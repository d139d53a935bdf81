// Package scrapers fetches and parses the travel advisory site: the country
// listing on the home page and the risk banner on each destination page.
package scrapers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (compatible; advisorymap/1.0)"

// ErrUnexpectedStatus is returned when the site answers with anything but 200.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// BaseScraper provides the HTTP plumbing shared by page scrapers.
type BaseScraper struct {
	name   string
	url    string
	client *resty.Client
}

// NewBaseScraper creates a base scraper. A nil httpClient gets a client with
// a 30 second timeout.
func NewBaseScraper(name, url string, httpClient *http.Client, userAgent string) *BaseScraper {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := resty.NewWithClient(httpClient).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &BaseScraper{
		name:   name,
		url:    url,
		client: client,
	}
}

// Name returns the scraper name.
func (b *BaseScraper) Name() string {
	return b.name
}

// URL returns the source URL.
func (b *BaseScraper) URL() string {
	return b.url
}

// Fetch retrieves content from a URL.
func (b *BaseScraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	return resp.Body(), nil
}

// FetchDocument retrieves a URL and parses it as HTML.
func (b *BaseScraper) FetchDocument(ctx context.Context, url string) (*goquery.Document, string, error) {
	body, err := b.Fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse html: %w", err)
	}

	return doc, HashContent(body), nil
}

// HashContent returns a SHA256 hash of the content.
func HashContent(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
