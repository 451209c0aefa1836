package linkcrawl

import (
	"context"
	"time"
)

// CrawlState is the lifecycle state of a single-domain crawl.
type CrawlState int32

// Crawl states.
const (
	// StateIdle: the root is seeded but nothing has been fetched.
	StateIdle CrawlState = iota
	// StateRunning: work is being dispatched to workers.
	StateRunning
	// StateDraining: the frontier is empty but fetches are still in flight.
	StateDraining
	// StateDone: the frontier is empty and every worker is idle.
	StateDone
)

func (s CrawlState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// CrawlStats summarizes a crawl.
type CrawlStats struct {
	Fetched     int // successful fetches
	Failed      int // failed fetches
	Discovered  int // distinct in-scope URLs found
	Enqueued    int // URLs admitted to the frontier queue, root included
	BeyondDepth int // URLs recorded but not queued because of the depth bound
	Bytes       int // total body bytes fetched

	Failures map[FailureKind]int
}

// RecordFailure counts a failed fetch of the given kind.
func (s *CrawlStats) RecordFailure(kind FailureKind) {
	if s.Failures == nil {
		s.Failures = make(map[FailureKind]int)
	}
	s.Failures[kind]++
	s.Failed++
}

// Visit is the outcome of processing one frontier entry.
type Visit struct {
	URL         string      `json:"url"`
	Depth       int         `json:"depth"`
	StatusCode  int         `json:"statusCode"`
	Bytes       int         `json:"bytes"`
	ContentHash string      `json:"contentHash"`
	Links       int         `json:"links"`
	Failure     FailureKind `json:"failure"`
	Error       string      `json:"error"`
}

// CrawlResult is the outcome of crawling one domain.
type CrawlResult struct {
	ID     string `json:"id"`
	Domain string `json:"domain"` // as given by the caller
	Root   string `json:"root"`   // normalized origin

	// URLs is the sorted set of in-scope URLs discovered.
	URLs   []string   `json:"urls"`
	Visits []Visit    `json:"visits"`
	Stats  CrawlStats `json:"stats"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Err is set when the crawl could not start or was stopped early.
	Err error `json:"-"`
}

// Validate returns an error if the result contains invalid fields.
func (r *CrawlResult) Validate() error {
	if r.Domain == "" {
		return Errorf(EINVALID, "crawl domain required")
	}
	return nil
}

// CrawlStore persists crawl results.
type CrawlStore interface {
	// CreateCrawl stores a finished crawl and assigns its ID.
	CreateCrawl(ctx context.Context, result *CrawlResult) error

	// FindCrawlByID retrieves a crawl with its URLs and visits.
	// Returns ENOTFOUND if the crawl does not exist.
	FindCrawlByID(ctx context.Context, id string) (*CrawlResult, error)

	// FindCrawls retrieves crawls matching the filter, newest first.
	// URLs and visits are not loaded.
	FindCrawls(ctx context.Context, filter CrawlFilter) ([]*CrawlResult, error)
}

// CrawlFilter represents a filter for FindCrawls.
type CrawlFilter struct {
	Root *string `json:"root"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
