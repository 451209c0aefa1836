package crawl_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/bloom"
	"github.com/fwojciec/linkcrawl/crawl"
	"github.com/fwojciec/linkcrawl/goquery"
	"github.com/fwojciec/linkcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treeSite builds a binary tree of n pages where every page also links
// back to the root and to its parent.
func treeSite(n int) *testSite {
	pages := make(map[string][]string, n)
	for i := 1; i <= n; i++ {
		links := []string{"/", fmt.Sprintf("/p/%d", i/2)}
		for _, child := range []int{2 * i, 2*i + 1} {
			if child <= n {
				links = append(links, fmt.Sprintf("/p/%d", child))
			}
		}
		pages[fmt.Sprintf("/p/%d", i)] = links
	}
	pages["/p/0"] = nil
	pages["/"] = []string{"/p/1"}
	return newTestSite(pages)
}

func TestCoordinator_Termination(t *testing.T) {
	t.Parallel()

	const pages = 63

	var want []string
	for _, workers := range []int{1, 2, 8, 32} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			site := treeSite(pages)
			c := newCoordinator(site)
			c.Concurrency = workers

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			result, err := c.Crawl(ctx, "example.com")
			require.NoError(t, err, "crawl must finish before the deadline")

			// Root, /p/0 and /p/1../p/63.
			assert.Len(t, result.URLs, pages+2)
			assert.Equal(t, pages+2, site.totalFetches())
			if want == nil {
				want = result.URLs
			}
			assert.Equal(t, want, result.URLs)
		})
	}
}

func TestCoordinator_Concurrency(t *testing.T) {
	t.Parallel()

	t.Run("processes URLs in parallel with multiple workers", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32

		const numPages = 10
		const concurrency = 3

		links := make([]string, 0, numPages)
		for i := 1; i <= numPages; i++ {
			links = append(links, fmt.Sprintf("/docs/page%d", i))
		}
		site := newTestSite(map[string][]string{"/": links})
		for _, l := range links {
			site.pages[l] = nil
		}

		c := newCoordinator(site)
		c.Concurrency = concurrency
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (*linkcrawl.Page, error) {
				current := currentConcurrent.Add(1)
				for {
					max := maxConcurrent.Load()
					if current <= max || maxConcurrent.CompareAndSwap(max, current) {
						break
					}
				}

				// Simulate work to allow concurrency to build up
				time.Sleep(50 * time.Millisecond)

				currentConcurrent.Add(-1)
				return site.fetch(ctx, url)
			},
		}

		result, err := c.Crawl(context.Background(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, numPages+1, result.Stats.Fetched)

		assert.GreaterOrEqual(t, maxConcurrent.Load(), int32(2),
			"expected at least 2 concurrent fetches, got %d", maxConcurrent.Load())
		assert.LessOrEqual(t, maxConcurrent.Load(), int32(concurrency),
			"no more than %d fetches may run at once", concurrency)
	})

	t.Run("bounds runaway link generation with max pages", func(t *testing.T) {
		t.Parallel()

		var fetchCount atomic.Int32

		c := &crawl.Coordinator{
			Concurrency: 5,
			MaxPages:    50,
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (*linkcrawl.Page, error) {
					n := fetchCount.Add(1)
					return &linkcrawl.Page{
						URL:         url,
						StatusCode:  200,
						ContentType: "text/html",
						Body:        []byte(fmt.Sprintf(`<a href="/gen/%d/a">a</a><a href="/gen/%d/b">b</a>`, n, n)),
					}, nil
				},
			},
			Extractor: goquery.NewLinkExtractor(),
		}

		result, err := c.Crawl(context.Background(), "example.com")
		require.NoError(t, err)
		assert.Equal(t, int32(50), fetchCount.Load())
		assert.Equal(t, 50, result.Stats.Fetched)
	})

	t.Run("crawls with an approximate visited set", func(t *testing.T) {
		t.Parallel()

		site := treeSite(31)
		c := newCoordinator(site)
		c.NewVisitedSet = bloom.NewDefaultSet

		result, err := c.Crawl(context.Background(), "example.com")
		require.NoError(t, err)

		// False positives may only drop URLs, never fetch one twice.
		for _, u := range result.URLs {
			assert.LessOrEqual(t, site.fetchCount(u), 1)
		}
		assert.LessOrEqual(t, site.totalFetches(), 33)
	})
}
