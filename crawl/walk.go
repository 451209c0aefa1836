package crawl

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// walker holds the state of one crawl. Only the frontier is shared with
// workers; everything else is owned by the dispatcher goroutine.
type walker struct {
	c        *Coordinator
	run      *Run
	root     linkcrawl.Origin
	frontier *Frontier
	result   *linkcrawl.CrawlResult

	found     map[string]struct{} // in-scope URLs discovered
	completed int
	rootErr   error
}

// visitResult is the outcome of processing one entry, produced by a worker
// after its links have been pushed to the frontier.
type visitResult struct {
	entry    linkcrawl.Entry
	status   int
	bytes    int
	hash     string
	links    []string // in-scope links, normalized
	enqueued int
	beyond   int
	err      error
}

// walk dispatches frontier entries to a pool of workers until the frontier
// is empty and no fetch is in flight, or ctx is done.
//
// pending counts entries handed to workers whose results have not been
// received. A worker pushes discovered links before sending its result,
// so an empty frontier with pending == 0 means no more work can appear.
func (w *walker) walk(ctx context.Context) {
	w.progress(ProgressEvent{Type: ProgressStarted})
	w.seedFromSitemap(ctx)

	concurrency := w.c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	// Unbuffered: an entry leaves the frontier only when a worker takes it.
	workCh := make(chan linkcrawl.Entry)
	resultCh := make(chan visitResult)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range workCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- w.safeProcess(ctx, entry)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	workClosed := false
	stopWorkers := func() {
		if !workClosed {
			workClosed = true
			close(workCh)
		}
	}
	// A panic on the dispatcher releases the workers before propagating
	// to Start, which reports it on the result.
	defer func() {
		if r := recover(); r != nil {
			stopWorkers()
			for range resultCh {
			}
			panic(r)
		}
	}()

	dispatched := 0
	pending := 0
	var next *linkcrawl.Entry

	popNext := func() {
		if next != nil || ctx.Err() != nil {
			return
		}
		if w.c.MaxPages > 0 && dispatched >= w.c.MaxPages {
			return
		}
		if entry, ok := w.frontier.Pop(); ok {
			next = &entry
		}
	}
	popNext()

dispatchLoop:
	for {
		if next == nil && pending == 0 {
			break dispatchLoop
		}

		if next != nil {
			select {
			case <-ctx.Done():
				break dispatchLoop
			case workCh <- *next:
				dispatched++
				pending++
				next = nil
			case res := <-resultCh:
				pending--
				w.record(res)
			}
		} else {
			select {
			case <-ctx.Done():
				break dispatchLoop
			case res := <-resultCh:
				pending--
				w.record(res)
			}
		}

		popNext()
		switch {
		case next != nil:
			w.run.setState(linkcrawl.StateRunning)
		case pending > 0:
			w.run.setState(linkcrawl.StateDraining)
		}
	}

	// Stop workers and collect what is still in flight.
	stopWorkers()
	for res := range resultCh {
		w.record(res)
	}

	w.finish(ctx)
	w.progress(ProgressEvent{Type: ProgressFinished, Error: w.result.Err})
	w.run.setState(linkcrawl.StateDone)
}

// seedFromSitemap admits in-scope sitemap URLs one hop from the root.
// Sitemap failures leave the crawl to link discovery alone.
func (w *walker) seedFromSitemap(ctx context.Context) {
	if w.c.Sitemaps == nil {
		return
	}
	urls, err := w.c.Sitemaps.DiscoverURLs(ctx, w.root.URL())
	if err != nil {
		return
	}
	for _, raw := range urls {
		link, ok := w.inScope(raw)
		if !ok {
			continue
		}
		w.found[link] = struct{}{}
		queued, marked := w.enqueue(link, 1)
		if queued {
			w.result.Stats.Enqueued++
		}
		if marked {
			w.result.Stats.BeyondDepth++
		}
	}
}

// safeProcess runs process, turning a panic in the fetcher, extractor or
// limiter into a failed visit.
func (w *walker) safeProcess(ctx context.Context, entry linkcrawl.Entry) (res visitResult) {
	defer func() {
		if r := recover(); r != nil {
			res = visitResult{entry: entry, err: &linkcrawl.FetchError{
				Kind: linkcrawl.FailureInternal,
				URL:  entry.URL,
				Err:  linkcrawl.Errorf(linkcrawl.EINTERNAL, "panic: %v", r),
			}}
		}
	}()
	return w.process(ctx, entry)
}

// process fetches one entry and pushes its in-scope links. It runs on a
// worker goroutine and touches no walker state besides the frontier.
func (w *walker) process(ctx context.Context, entry linkcrawl.Entry) visitResult {
	res := visitResult{entry: entry}

	if w.c.RateLimiter != nil {
		if err := w.c.RateLimiter.Wait(ctx, w.root.Host); err != nil {
			res.err = &linkcrawl.FetchError{Kind: linkcrawl.FailureKindOf(err), URL: entry.URL, Err: err}
			return res
		}
	}

	page, err := FetchWithRetryDelays(ctx, entry.URL, w.c.Fetcher.Fetch, w.c.Logf, w.c.RetryDelays)
	if err != nil {
		res.err = err
		return res
	}
	res.status = page.StatusCode
	res.bytes = len(page.Body)
	res.hash = computeHash(page.Body)

	// A redirect off the origin yields a page whose links are not ours.
	base := page.BaseURL()
	if !page.IsHTML() || !linkcrawl.InScope(base, w.root) {
		return res
	}

	for _, raw := range w.c.Extractor.ExtractLinks(base, page.Body) {
		link, ok := w.inScope(raw)
		if !ok {
			continue
		}
		res.links = append(res.links, link)
		if ctx.Err() != nil {
			continue
		}
		queued, marked := w.enqueue(link, entry.Depth+1)
		if queued {
			res.enqueued++
		}
		if marked {
			res.beyond++
		}
	}

	return res
}

// inScope normalizes raw and reports whether it belongs to the crawl root.
func (w *walker) inScope(raw string) (string, bool) {
	link, err := linkcrawl.NormalizeURL(raw)
	if err != nil || !linkcrawl.InScope(link, w.root) {
		return "", false
	}
	return link, true
}

// enqueue offers link to the frontier. Links beyond MaxDepth are only
// marked as seen so they are reported without being fetched.
func (w *walker) enqueue(link string, depth int) (queued, marked bool) {
	if w.c.MaxDepth > 0 && depth > w.c.MaxDepth {
		return false, w.frontier.Mark(link)
	}
	return w.frontier.Push(linkcrawl.Entry{URL: link, Depth: depth}), false
}

// record merges a worker's result into the crawl result.
func (w *walker) record(res visitResult) {
	r := w.result

	for _, link := range res.links {
		w.found[link] = struct{}{}
	}
	r.Stats.Enqueued += res.enqueued
	r.Stats.BeyondDepth += res.beyond
	w.completed++

	visit := linkcrawl.Visit{
		URL:         res.entry.URL,
		Depth:       res.entry.Depth,
		StatusCode:  res.status,
		Bytes:       res.bytes,
		ContentHash: res.hash,
		Links:       len(res.links),
	}

	if res.err != nil {
		kind := linkcrawl.FailureKindOf(res.err)
		visit.Failure = kind
		visit.Error = res.err.Error()
		var fe *linkcrawl.FetchError
		if errors.As(res.err, &fe) {
			visit.StatusCode = fe.StatusCode
		}
		r.Stats.RecordFailure(kind)
		if res.entry.Depth == 0 && w.rootErr == nil {
			w.rootErr = res.err
		}
		r.Visits = append(r.Visits, visit)
		w.progress(ProgressEvent{
			Type:  ProgressFailed,
			URL:   res.entry.URL,
			Depth: res.entry.Depth,
			Error: res.err,
		})
		return
	}

	r.Stats.Fetched++
	r.Stats.Bytes += res.bytes
	r.Visits = append(r.Visits, visit)
	w.progress(ProgressEvent{
		Type:  ProgressCompleted,
		URL:   res.entry.URL,
		Depth: res.entry.Depth,
	})
}

// finish sorts the result set and stamps the result.
func (w *walker) finish(ctx context.Context) {
	r := w.result
	r.URLs = make([]string, 0, len(w.found))
	for u := range w.found {
		r.URLs = append(r.URLs, u)
	}
	slices.Sort(r.URLs)
	r.Stats.Discovered = len(r.URLs)
	r.FinishedAt = time.Now()

	switch {
	case ctx.Err() != nil:
		r.Err = ctx.Err()
	case r.Stats.Fetched == 0 && w.rootErr != nil:
		r.Err = fmt.Errorf("fetch root %s: %w", w.root.URL(), w.rootErr)
	}
}

func (w *walker) progress(event ProgressEvent) {
	if w.c.Progress == nil {
		return
	}
	event.Root = w.root.String()
	event.Completed = w.completed
	event.Queued = w.frontier.Len()
	w.c.Progress(event)
}
