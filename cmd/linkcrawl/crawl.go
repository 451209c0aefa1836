package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/crawl"
	"github.com/fwojciec/linkcrawl/fs"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	domains, err := c.domains()
	if linkcrawl.ErrorCode(err) == linkcrawl.ENOTFOUND {
		fmt.Fprintln(deps.Stdout, linkcrawl.ErrorMessage(err))
		return nil
	} else if err != nil {
		return err
	}
	if len(domains) == 0 && c.List == "" {
		fmt.Fprintln(deps.Stdout, "Please specify a domain or file.")
		return nil
	}

	ctx := deps.Ctx
	if c.CrawlTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.CrawlTimeout)
		defer cancel()
	}

	result, err := deps.Batch.Run(ctx, domains)
	if err != nil {
		return err
	}

	for _, r := range result.Crawls {
		printSummary(deps.Stderr, r)
	}

	if err := c.writeURLs(deps.Stdout, result.URLs); err != nil {
		return err
	}

	if deps.Store == nil {
		return nil
	}
	// An interrupted crawl is still recorded.
	storeCtx := context.WithoutCancel(deps.Ctx)
	for _, r := range result.Crawls {
		if err := deps.Store.CreateCrawl(storeCtx, r); err != nil {
			return fmt.Errorf("record crawl of %s: %w", r.Domain, err)
		}
	}
	return nil
}

func (c *CrawlCmd) writeURLs(stdout io.Writer, urls []string) error {
	if c.OutputFile == "" {
		return fs.WriteURLs(stdout, urls)
	}
	if err := fs.WriteURLFile(c.OutputFile, urls); err != nil {
		return fmt.Errorf("write %s: %w", c.OutputFile, err)
	}
	return nil
}

// domains resolves the crawl targets from the domain or the list file.
func (c *CrawlCmd) domains() ([]string, error) {
	switch {
	case c.Domain != "":
		return []string{c.Domain}, nil
	case c.List != "":
		return fs.ReadDomains(c.List)
	default:
		return nil, nil
	}
}

// printSummary writes one line per crawl to w.
func printSummary(w io.Writer, r *linkcrawl.CrawlResult) {
	st := r.Stats
	if r.Err != nil && st.Fetched == 0 {
		fmt.Fprintf(w, "%s: error: %v\n", r.Domain, r.Err)
		return
	}
	fmt.Fprintf(w, "%s: %d URLs, %d fetched, %d failed, %s",
		r.Domain, len(r.URLs), st.Fetched, st.Failed, crawl.FormatBytes(st.Bytes))
	if st.BeyondDepth > 0 {
		fmt.Fprintf(w, ", %d beyond depth", st.BeyondDepth)
	}
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(w, " in %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	if r.Err != nil {
		fmt.Fprintf(w, " (stopped: %v)", r.Err)
	}
	fmt.Fprintln(w)
}

// progressPrinter reports failed fetches to w.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		if event.Type == crawl.ProgressFailed {
			fmt.Fprintf(w, "skip %s: %v\n", crawl.TruncateURL(event.URL, 80), event.Error)
		}
	}
}
