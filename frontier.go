package linkcrawl

import "context"

// Entry is a URL waiting in the frontier together with its distance in
// hops from the crawl root.
type Entry struct {
	URL   string
	Depth int
}

// URLFrontier manages a crawl queue with deduplication.
// Implementations must be safe for concurrent use.
type URLFrontier interface {
	// Push admits the entry's URL to the visited set and queues it.
	// Returns false if the URL has already been seen. The check and the
	// insert happen as one step.
	Push(entry Entry) bool

	// Mark admits a URL to the visited set without queueing it.
	// Returns false if the URL has already been seen.
	Mark(url string) bool

	// Pop returns the oldest queued entry.
	// Returns false if the frontier is empty.
	Pop() (Entry, bool)

	// Len returns the number of queued entries.
	Len() int

	// Seen returns true if the URL has been queued or marked.
	Seen(url string) bool
}

// VisitedSet records URLs admitted to a crawl.
// Implementations need not be safe for concurrent use; the frontier
// serializes access.
type VisitedSet interface {
	// Add inserts url and reports whether it was absent.
	Add(url string) bool

	// Contains reports whether url was added.
	Contains(url string) bool

	// Len returns the number of URLs added.
	Len() int
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
