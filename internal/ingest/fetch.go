package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"podscribe/internal/services"
)

const userAgent = "podscribe/1.0"

// FetchResult carries a parsed feed document together with the response's
// cache validators. NotModified means the server answered 304 and Feed is nil.
type FetchResult struct {
	NotModified  bool
	Feed         *gofeed.Feed
	ETag         string
	LastModified string
}

// Fetcher retrieves and parses feed documents over HTTP.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher builds a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

// Fetch performs a conditional GET of url. The stored etag and lastModified
// validators are sent when non-empty; a 304 response short-circuits without
// parsing.
func (f *Fetcher) Fetch(ctx context.Context, url, etag, lastModified string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "fetch", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &FetchResult{NotModified: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "ingest", "fetch",
			fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "ingest", "fetch", "read body", err)
	}
	feed, err := f.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "ingest", "parse", url, err)
	}

	return &FetchResult{
		Feed:         feed,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}
