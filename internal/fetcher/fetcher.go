// Package fetcher downloads feed content and parses it into candidate
// entries, one per fetched position. Parsing is per-entry: a post that
// cannot be turned into a usable candidate yields an entry carrying an
// error, so downstream selection can skip it while still counting it
// against the scan budget.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"picbot/internal/model"
)

const (
	userAgent   = "picbot/1.0"
	maxBodySize = 5 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses candidate posts for configured feeds.
type Fetcher struct {
	client  HTTPClient
	log     *slog.Logger
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		log:     log,
		timeout: 30 * time.Second,
	}
}

// Fetch returns the feed's candidate entries, newest first, in the order
// the feed supplied them.
func (f *Fetcher) Fetch(ctx context.Context, feed model.Feed) ([]model.Entry, error) {
	switch feed.Kind {
	case model.FeedReddit:
		return f.fetchReddit(ctx, feed)
	case model.FeedRSS:
		return f.fetchRSS(ctx, feed)
	default:
		return nil, fmt.Errorf("feed %q: unknown kind %q", feed.Name, feed.Kind)
	}
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (f *Fetcher) logSkips(feed string, entries []model.Entry) {
	for i, e := range entries {
		if e.Err != nil {
			f.log.Debug("unusable candidate", "feed", feed, "position", i, "reason", e.Err)
		}
	}
}
