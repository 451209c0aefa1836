package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Ensure LoggingCrawlStore implements linkcrawl.CrawlStore.
var _ linkcrawl.CrawlStore = (*LoggingCrawlStore)(nil)

// LoggingCrawlStore wraps a CrawlStore with debug logging.
type LoggingCrawlStore struct {
	next   linkcrawl.CrawlStore
	logger *slog.Logger
}

// NewLoggingCrawlStore creates a new LoggingCrawlStore.
func NewLoggingCrawlStore(next linkcrawl.CrawlStore, logger *slog.Logger) *LoggingCrawlStore {
	return &LoggingCrawlStore{next: next, logger: logger}
}

// CreateCrawl delegates to the wrapped store and logs the stored crawl.
func (s *LoggingCrawlStore) CreateCrawl(ctx context.Context, result *linkcrawl.CrawlResult) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create crawl",
			"id", result.ID,
			"domain", result.Domain,
			"urls", len(result.URLs),
			"visits", len(result.Visits),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateCrawl(ctx, result)
}

// FindCrawlByID delegates to the wrapped store.
func (s *LoggingCrawlStore) FindCrawlByID(ctx context.Context, id string) (result *linkcrawl.CrawlResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find crawl",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindCrawlByID(ctx, id)
}

// FindCrawls delegates to the wrapped store.
func (s *LoggingCrawlStore) FindCrawls(ctx context.Context, filter linkcrawl.CrawlFilter) (results []*linkcrawl.CrawlResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("find crawls",
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindCrawls(ctx, filter)
}
