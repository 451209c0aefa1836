package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCrawlStore_CreateCrawl(t *testing.T) {
	t.Parallel()

	t.Run("creates crawl with generated ID", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		result := newCrawlResult("example.com", 3)

		require.NoError(t, store.CreateCrawl(context.Background(), result))
		assert.NotEmpty(t, result.ID, "ID should be generated")
	})

	t.Run("returns error for invalid crawl", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))

		err := store.CreateCrawl(context.Background(), &linkcrawl.CrawlResult{})
		require.Error(t, err)
		assert.Equal(t, linkcrawl.EINVALID, linkcrawl.ErrorCode(err))
	})

	t.Run("stores a failed crawl without a root", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		ctx := context.Background()

		result := &linkcrawl.CrawlResult{
			Domain:     "ftp://bad",
			StartedAt:  time.Now(),
			FinishedAt: time.Now(),
			Err:        errors.New("invalid domain"),
		}
		require.NoError(t, store.CreateCrawl(ctx, result))

		found, err := store.FindCrawlByID(ctx, result.ID)
		require.NoError(t, err)
		require.Error(t, found.Err)
		assert.Equal(t, "invalid domain", found.Err.Error())
		assert.Empty(t, found.URLs)
	})
}

func TestCrawlStore_FindCrawlByID(t *testing.T) {
	t.Parallel()

	t.Run("returns crawl with URLs and visits", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		ctx := context.Background()

		result := newCrawlResult("example.com", 2)
		result.Visits = append(result.Visits, linkcrawl.Visit{
			URL:        "https://example.com/broken",
			Depth:      2,
			StatusCode: 500,
			Failure:    linkcrawl.FailureHTTP,
			Error:      "https://example.com/broken: HTTP 500",
		})
		result.Stats.Failed = 1
		require.NoError(t, store.CreateCrawl(ctx, result))

		found, err := store.FindCrawlByID(ctx, result.ID)
		require.NoError(t, err)

		assert.Equal(t, result.ID, found.ID)
		assert.Equal(t, "example.com", found.Domain)
		assert.Equal(t, "https://example.com", found.Root)
		assert.True(t, result.StartedAt.Equal(found.StartedAt))
		assert.True(t, result.FinishedAt.Equal(found.FinishedAt))
		assert.Equal(t, result.URLs, found.URLs)
		assert.Equal(t, result.Visits, found.Visits)
		assert.Equal(t, 2, found.Stats.Fetched)
		assert.Equal(t, 1, found.Stats.Failed)
		assert.Equal(t, 2048, found.Stats.Bytes)
		assert.Equal(t, map[linkcrawl.FailureKind]int{linkcrawl.FailureHTTP: 1}, found.Stats.Failures)
		assert.NoError(t, found.Err)
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))

		_, err := store.FindCrawlByID(context.Background(), "nonexistent-id")
		require.Error(t, err)
		assert.Equal(t, linkcrawl.ENOTFOUND, linkcrawl.ErrorCode(err))
	})
}

func TestCrawlStore_FindCrawls(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, store *sqlite.CrawlStore) {
		t.Helper()
		for i, domain := range []string{"a.com", "b.com", "a.com"} {
			r := newCrawlResult(domain, 1)
			r.StartedAt = r.StartedAt.Add(time.Duration(i) * time.Minute)
			require.NoError(t, store.CreateCrawl(context.Background(), r))
		}
	}

	t.Run("returns all crawls newest first", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		seed(t, store)

		crawls, err := store.FindCrawls(context.Background(), linkcrawl.CrawlFilter{})
		require.NoError(t, err)
		require.Len(t, crawls, 3)
		assert.Equal(t, "a.com", crawls[0].Domain)
		assert.Equal(t, "b.com", crawls[1].Domain)
		assert.True(t, crawls[0].StartedAt.After(crawls[1].StartedAt))
		assert.Empty(t, crawls[0].URLs, "list results do not load URLs")
	})

	t.Run("filters by root", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		seed(t, store)

		root := "https://a.com"
		crawls, err := store.FindCrawls(context.Background(), linkcrawl.CrawlFilter{Root: &root})
		require.NoError(t, err)
		assert.Len(t, crawls, 2)
		for _, c := range crawls {
			assert.Equal(t, root, c.Root)
		}
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewCrawlStore(setupTestDB(t))
		seed(t, store)

		crawls, err := store.FindCrawls(context.Background(), linkcrawl.CrawlFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, crawls, 1)
		assert.Equal(t, "b.com", crawls[0].Domain)

		crawls, err = store.FindCrawls(context.Background(), linkcrawl.CrawlFilter{Offset: 2})
		require.NoError(t, err)
		assert.Len(t, crawls, 1)
	})
}
