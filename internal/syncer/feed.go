// Package syncer contains the reconciliation engine: the scheduled,
// idempotent pipeline that keeps the event store in step with every
// club's external calendar feed.
package syncer

import (
	"context"
	"time"

	"clubsync/internal/ics"
)

// FeedSource produces the raw entries for one feed URL. Tests substitute
// a stub; production wires the HTTP fetcher and ICS parser together.
type FeedSource interface {
	Entries(ctx context.Context, url string) ([]ics.Entry, error)
}

// ICSFeedSource fetches a feed over HTTP, parses it and projects
// recurring entries onto their next occurrence.
type ICSFeedSource struct {
	fetcher     *ics.Fetcher
	horizonDays int
}

// NewICSFeedSource builds the production FeedSource.
func NewICSFeedSource(timeout time.Duration, horizonDays int) *ICSFeedSource {
	return &ICSFeedSource{
		fetcher:     ics.NewFetcher(timeout),
		horizonDays: horizonDays,
	}
}

func (s *ICSFeedSource) Entries(ctx context.Context, url string) ([]ics.Entry, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	entries, err := ics.ParseFeed(body)
	if err != nil {
		return nil, err
	}
	return ics.ProjectRecurrence(entries, time.Now(), s.horizonDays), nil
}
