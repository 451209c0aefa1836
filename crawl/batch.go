package crawl

import (
	"context"
	"fmt"
	"slices"

	"github.com/fwojciec/linkcrawl"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency is the number of domains crawled at once.
const DefaultBatchConcurrency = 10

// Ensure Coordinator implements DomainCrawler at compile time.
var _ DomainCrawler = (*Coordinator)(nil)

// DomainCrawler crawls a single domain.
type DomainCrawler interface {
	Crawl(ctx context.Context, domain string) (*linkcrawl.CrawlResult, error)
}

// Batch crawls many domains with bounded concurrency. The bound is
// independent of the worker pool inside each crawl.
type Batch struct {
	Crawler     DomainCrawler
	Concurrency int
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	// Crawls holds one result per input domain, in input order.
	Crawls []*linkcrawl.CrawlResult

	// URLs is the sorted union of every crawl's URLs.
	URLs []string
}

// Failed returns the crawls that ended with an error.
func (r *BatchResult) Failed() []*linkcrawl.CrawlResult {
	var failed []*linkcrawl.CrawlResult
	for _, c := range r.Crawls {
		if c.Err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}

// Run crawls every domain and merges the results. A domain whose crawl
// fails keeps its error on its result and does not stop the others.
func (b *Batch) Run(ctx context.Context, domains []string) (*BatchResult, error) {
	if b.Crawler == nil {
		return nil, linkcrawl.Errorf(linkcrawl.EINTERNAL, "batch requires a crawler")
	}

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	crawls := make([]*linkcrawl.CrawlResult, len(domains))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, domain := range domains {
		g.Go(func() error {
			crawls[i] = b.crawl(ctx, domain)
			return nil
		})
	}
	_ = g.Wait()

	seen := make(map[string]struct{})
	var urls []string
	for _, c := range crawls {
		for _, u := range c.URLs {
			if _, ok := seen[u]; ok {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	slices.Sort(urls)

	return &BatchResult{Crawls: crawls, URLs: urls}, nil
}

// crawl runs one domain, turning a panic into an error on its result.
func (b *Batch) crawl(ctx context.Context, domain string) (result *linkcrawl.CrawlResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &linkcrawl.CrawlResult{
				Domain: domain,
				Err:    linkcrawl.Errorf(linkcrawl.EINTERNAL, "crawl %s panicked: %v", domain, r),
			}
		}
	}()

	result, err := b.Crawler.Crawl(ctx, domain)
	if result == nil {
		result = &linkcrawl.CrawlResult{Domain: domain}
	}
	if err != nil && result.Err == nil {
		result.Err = fmt.Errorf("crawl %s: %w", domain, err)
	}
	return result
}
