package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/storage"
)

type Fetcher struct {
	client      *http.Client
	userAgent   string
	ignoreCache bool
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := cfg.API.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.API.UserAgent,
	}
}

// SetIgnoreCache makes Fetch skip the conditional request headers.
func (f *Fetcher) SetIgnoreCache(ignore bool) {
	f.ignoreCache = ignore
}

// Fetch issues a conditional GET for url. It returns (nil, false, nil) when
// the server answers 304 Not Modified; otherwise the caller closes the body.
func (f *Fetcher) Fetch(ctx context.Context, url string, meta *storage.FetchMetadata) (*http.Response, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml, text/xml")

	if meta != nil && !f.ignoreCache {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetching feed: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, false, nil
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, false, fmt.Errorf("fetching feed: %w", storage.ErrNotFound)
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, false, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, true, nil
}

// UpdateMetadata records the validators of resp for the next request.
func (f *Fetcher) UpdateMetadata(meta *storage.FetchMetadata, resp *http.Response) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		meta.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		meta.LastModified = lastMod
	}
	meta.LastFetched = time.Now()
}
