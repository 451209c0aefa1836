package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.VisitedSet = (*VisitedSet)(nil)

// VisitedSet is a mock implementation of linkcrawl.VisitedSet.
type VisitedSet struct {
	AddFn      func(url string) bool
	ContainsFn func(url string) bool
	LenFn      func() int
}

func (s *VisitedSet) Add(url string) bool {
	return s.AddFn(url)
}

func (s *VisitedSet) Contains(url string) bool {
	return s.ContainsFn(url)
}

func (s *VisitedSet) Len() int {
	return s.LenFn()
}

var _ linkcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of linkcrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
