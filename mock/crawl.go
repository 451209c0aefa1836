package mock

import (
	"context"

	"github.com/fwojciec/linkcrawl"
)

var _ linkcrawl.CrawlStore = (*CrawlStore)(nil)

// CrawlStore is a mock implementation of linkcrawl.CrawlStore.
type CrawlStore struct {
	CreateCrawlFn   func(ctx context.Context, result *linkcrawl.CrawlResult) error
	FindCrawlByIDFn func(ctx context.Context, id string) (*linkcrawl.CrawlResult, error)
	FindCrawlsFn    func(ctx context.Context, filter linkcrawl.CrawlFilter) ([]*linkcrawl.CrawlResult, error)
}

func (s *CrawlStore) CreateCrawl(ctx context.Context, result *linkcrawl.CrawlResult) error {
	return s.CreateCrawlFn(ctx, result)
}

func (s *CrawlStore) FindCrawlByID(ctx context.Context, id string) (*linkcrawl.CrawlResult, error) {
	return s.FindCrawlByIDFn(ctx, id)
}

func (s *CrawlStore) FindCrawls(ctx context.Context, filter linkcrawl.CrawlFilter) ([]*linkcrawl.CrawlResult, error) {
	return s.FindCrawlsFn(ctx, filter)
}
