// Package ics fetches and parses external iCalendar feeds into the raw
// entries consumed by the reconciliation engine.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher retrieves ICS payloads over HTTP. The client timeout bounds
// the worst-case stall per feed; a club whose feed hangs loses its own
// cycle only.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests time out after the given
// duration. A non-positive timeout falls back to 15 seconds.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the raw ICS body for a single feed URL. Any failure
// (network, timeout, non-2xx status) is returned to the caller; the next
// scheduled cycle is the retry.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("feed URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed fetch returned %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// RedactURL hides the path and query of a feed URL for logging. Feed
// URLs routinely embed access tokens.
func RedactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := -1
	for idx := 0; idx+2 < len(u); idx++ {
		if u[idx:idx+3] == "://" {
			i = idx + 3
			break
		}
	}
	if i == -1 {
		return "ics://...(redacted)"
	}

	j := i
	for j < len(u) && u[j] != '/' {
		j++
	}

	return u[:j] + redactedSuffix
}
