// Package cache records the outcome of feed fetch attempts.
package cache

import (
	"context"
	"sort"
	"time"
)

// FetchResult describes a single fetch attempt of one feed source.
type FetchResult struct {
	Source    string
	FeedTitle string
	Entries   int
	Err       error
	At        time.Time
}

// FeedStatus is the accumulated state of one feed source.
type FeedStatus struct {
	Source      string    `json:"source"`
	FeedTitle   string    `json:"feed_title,omitempty"`
	LastStatus  string    `json:"last_status"`
	LastError   string    `json:"last_error,omitempty"`
	LastFetched time.Time `json:"last_fetched"`
	Entries     int       `json:"entries"`
	Successes   int64     `json:"successes"`
	Failures    int64     `json:"failures"`
}

// Status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Tracker stores feed fetch outcomes. Implementations must be safe for concurrent use.
type Tracker interface {
	Record(ctx context.Context, result FetchResult) error
	List(ctx context.Context) ([]FeedStatus, error)
	Reset(ctx context.Context) error
	Close() error
}

func apply(status *FeedStatus, result FetchResult) {
	status.Source = result.Source
	status.LastFetched = result.At
	status.Entries = result.Entries
	if result.FeedTitle != "" {
		status.FeedTitle = result.FeedTitle
	}
	if result.Err != nil {
		status.LastStatus = StatusError
		status.LastError = result.Err.Error()
		status.Failures++
		return
	}
	status.LastStatus = StatusOK
	status.LastError = ""
	status.Successes++
}

func sortStatuses(statuses []FeedStatus) {
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Source < statuses[j].Source
	})
}
