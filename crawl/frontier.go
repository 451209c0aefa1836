package crawl

import (
	"sync"

	"github.com/fwojciec/linkcrawl"
)

// Compile-time interface verification.
var (
	_ linkcrawl.URLFrontier = (*Frontier)(nil)
	_ linkcrawl.VisitedSet  = (*MemorySet)(nil)
)

// Frontier is an in-memory breadth-first URL frontier.
// The queue and the visited set share one mutex, so the
// check-then-insert in Push and Mark is atomic across goroutines.
type Frontier struct {
	mu      sync.Mutex
	visited linkcrawl.VisitedSet
	queue   []linkcrawl.Entry
}

// NewFrontier creates a Frontier that tracks visited URLs exactly.
func NewFrontier() *Frontier {
	return NewFrontierWithSet(NewMemorySet())
}

// NewFrontierWithSet creates a Frontier backed by the given visited set.
func NewFrontierWithSet(set linkcrawl.VisitedSet) *Frontier {
	return &Frontier{visited: set}
}

// Push adds an entry to the back of the queue.
// Returns false if the URL has already been seen or cannot be normalized.
// URLs differing only by fragment are considered duplicates.
func (f *Frontier) Push(entry linkcrawl.Entry) bool {
	url, err := linkcrawl.NormalizeURL(entry.URL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.visited.Add(url) {
		return false
	}
	entry.URL = url
	f.queue = append(f.queue, entry)
	return true
}

// Mark records a URL as seen without queueing it.
// Returns false if the URL has already been seen or cannot be normalized.
func (f *Frontier) Mark(rawURL string) bool {
	url, err := linkcrawl.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Add(url)
}

// Pop removes and returns the oldest entry.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (linkcrawl.Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return linkcrawl.Entry{}, false
	}
	entry := f.queue[0]
	f.queue[0] = linkcrawl.Entry{}
	f.queue = f.queue[1:]
	return entry, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Visited returns the number of URLs queued or marked so far.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Len()
}

// Seen returns true if the URL has been queued or marked.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(rawURL string) bool {
	url, err := linkcrawl.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Contains(url)
}

// MemorySet is an exact visited set held in a map.
// It is not safe for concurrent use on its own.
type MemorySet struct {
	urls map[string]struct{}
}

// NewMemorySet creates an empty MemorySet.
func NewMemorySet() *MemorySet {
	return &MemorySet{urls: make(map[string]struct{})}
}

// Add records url and reports whether it was absent.
func (s *MemorySet) Add(url string) bool {
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Contains reports whether url was added.
func (s *MemorySet) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Len returns the number of URLs added.
func (s *MemorySet) Len() int {
	return len(s.urls)
}
