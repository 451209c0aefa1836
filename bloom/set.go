// Package bloom provides an approximate linkcrawl.VisitedSet backed by a
// Bloom filter, for crawls too large to track every URL exactly.
package bloom

import (
	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/linkcrawl"
)

// Ensure Set implements linkcrawl.VisitedSet at compile time.
var _ linkcrawl.VisitedSet = (*Set)(nil)

// DefaultCapacity is the expected number of URLs used by NewDefaultSet.
const DefaultCapacity = 1_000_000

// DefaultFalsePositiveRate is the false positive rate used by NewDefaultSet.
const DefaultFalsePositiveRate = 0.0001

// Set records visited URLs in a Bloom filter.
//
// A false positive makes Add report an unseen URL as already visited, so
// that URL is skipped. URLs are never fetched twice. Set is not safe for
// concurrent use; the frontier serializes access to it.
type Set struct {
	f *bloom.BloomFilter
	n int
}

// NewSet creates a Set sized for n expected URLs with the given false
// positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewDefaultSet creates a Set with DefaultCapacity and DefaultFalsePositiveRate.
func NewDefaultSet() linkcrawl.VisitedSet {
	return NewSet(DefaultCapacity, DefaultFalsePositiveRate)
}

// Add records url and reports whether it was not already present.
func (s *Set) Add(url string) bool {
	if s.f.TestAndAddString(url) {
		return false
	}
	s.n++
	return true
}

// Contains reports whether url might have been added.
func (s *Set) Contains(url string) bool {
	return s.f.TestString(url)
}

// Len returns the number of URLs accepted by Add.
func (s *Set) Len() int {
	return s.n
}

// EstimatedCount returns the filter's own estimate of its cardinality.
func (s *Set) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
