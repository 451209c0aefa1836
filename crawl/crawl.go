// Package crawl provides same-origin link crawling.
// It coordinates a bounded pool of fetch workers around a shared
// breadth-first frontier, and runs many such crawls as a batch.
package crawl

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// DefaultConcurrency is the number of fetch workers per crawl.
const DefaultConcurrency = 10

// Coordinator crawls a single domain breadth-first with a pool of workers.
// A Coordinator holds configuration only and may run several crawls at once.
type Coordinator struct {
	Fetcher     linkcrawl.Fetcher
	Extractor   linkcrawl.LinkExtractor
	RateLimiter linkcrawl.DomainLimiter  // optional
	Sitemaps    linkcrawl.SitemapService // optional, seeds the frontier

	// Concurrency is the number of fetch workers; defaults to DefaultConcurrency.
	Concurrency int

	// MaxDepth bounds traversal in hops from the root. Links beyond it are
	// reported but not fetched. Zero means unbounded.
	MaxDepth int

	// MaxPages stops dispatching after this many fetches. Zero means unbounded.
	MaxPages int

	// RetryDelays are the backoff delays for transient fetch failures.
	// Nil means every URL is fetched exactly once.
	RetryDelays []time.Duration

	// NewVisitedSet creates the visited set of each crawl.
	// Defaults to an exact in-memory set.
	NewVisitedSet func() linkcrawl.VisitedSet

	// Progress, if set, receives events as crawling proceeds. It is called
	// from one goroutine per crawl; concurrent crawls call it concurrently.
	Progress ProgressFunc

	// Logf, if set, receives retry messages.
	Logf LogFunc
}

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Root      string
	Completed int
	Queued    int
	URL       string
	Depth     int
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Run is a crawl in progress.
type Run struct {
	state  atomic.Int32
	done   chan struct{}
	result *linkcrawl.CrawlResult
}

// State returns the crawl's current lifecycle state.
// It is safe to call from any goroutine.
func (r *Run) State() linkcrawl.CrawlState {
	return linkcrawl.CrawlState(r.state.Load())
}

// Done returns a channel closed when the crawl reaches StateDone.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the crawl is done and returns its result.
// The error is the result's Err.
func (r *Run) Wait() (*linkcrawl.CrawlResult, error) {
	<-r.done
	return r.result, r.result.Err
}

func (r *Run) setState(s linkcrawl.CrawlState) {
	r.state.Store(int32(s))
}

// Start validates domain, seeds the frontier with its root URL and starts
// crawling in the background. The returned run is in StateIdle until the
// first URL is dispatched. An invalid domain returns EINVALID and no run.
func (c *Coordinator) Start(ctx context.Context, domain string) (*Run, error) {
	if c.Fetcher == nil || c.Extractor == nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINTERNAL, "coordinator requires a fetcher and a link extractor")
	}

	root, err := linkcrawl.ParseOrigin(linkcrawl.DomainURL(domain))
	if err != nil {
		return nil, err
	}

	set := linkcrawl.VisitedSet(NewMemorySet())
	if c.NewVisitedSet != nil {
		set = c.NewVisitedSet()
	}
	frontier := NewFrontierWithSet(set)

	result := &linkcrawl.CrawlResult{
		Domain:    domain,
		Root:      root.String(),
		StartedAt: time.Now(),
	}
	if frontier.Push(linkcrawl.Entry{URL: root.URL(), Depth: 0}) {
		result.Stats.Enqueued++
	}

	run := &Run{
		done:   make(chan struct{}),
		result: result,
	}
	w := &walker{
		c:        c,
		run:      run,
		root:     root,
		frontier: frontier,
		result:   result,
		found:    make(map[string]struct{}),
	}

	go func() {
		defer close(run.done)
		defer func() {
			if r := recover(); r != nil {
				result.FinishedAt = time.Now()
				result.Err = linkcrawl.Errorf(linkcrawl.EINTERNAL, "crawl %s panicked: %v", domain, r)
				run.setState(linkcrawl.StateDone)
			}
		}()
		w.walk(ctx)
	}()

	return run, nil
}

// Crawl crawls domain to completion and returns the in-scope URLs found.
// The result is never nil: an invalid domain, a root that cannot be
// fetched, or a stopped context is reported on the result's Err and
// returned as the error, alongside whatever was collected.
func (c *Coordinator) Crawl(ctx context.Context, domain string) (*linkcrawl.CrawlResult, error) {
	run, err := c.Start(ctx, domain)
	if err != nil {
		now := time.Now()
		return &linkcrawl.CrawlResult{
			Domain:     domain,
			StartedAt:  now,
			FinishedAt: now,
			Err:        err,
		}, err
	}
	return run.Wait()
}
