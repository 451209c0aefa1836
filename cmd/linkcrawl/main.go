package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkcrawl"
	"github.com/fwojciec/linkcrawl/bloom"
	"github.com/fwojciec/linkcrawl/crawl"
	"github.com/fwojciec/linkcrawl/goquery"
	lchttp "github.com/fwojciec/linkcrawl/http"
	lcslog "github.com/fwojciec/linkcrawl/slog"
	"github.com/fwojciec/linkcrawl/sqlite"
	"github.com/fwojciec/linkcrawl/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultConfigPath is read when present; --config overrides it.
const defaultConfigPath = "~/.config/linkcrawl/config.yaml"

// Main represents the program.
type Main struct {
	// SQLite database, opened when --db is given.
	DB *sqlite.DB

	// Fetcher replaces the HTTP fetcher when set. Used for testing.
	Fetcher linkcrawl.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	// --help requests an exit once the usage is written.
	exited := false
	parser, err := kong.New(cli,
		kong.Name("linkcrawl"),
		kong.Description("Discover every same-origin URL reachable from one or more domains"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) { exited = true }),
		kong.DefaultEnvars("LINKCRAWL"),
		kong.Configuration(yaml.Loader, defaultConfigPath),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	_, err = parser.Parse(args)
	if exited {
		return nil
	} else if err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: &syncWriter{w: stderr},
	}

	var logger *slog.Logger
	if cli.Debug {
		logger = slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var fetcher linkcrawl.Fetcher = m.Fetcher
	if fetcher == nil {
		opts := []lchttp.Option{
			lchttp.WithTimeout(cli.Timeout),
			lchttp.WithInsecureSkipVerify(cli.Insecure),
		}
		if cli.UserAgent != "" {
			opts = append(opts, lchttp.WithUserAgent(cli.UserAgent))
		}
		httpFetcher := lchttp.NewFetcher(opts...)
		defer httpFetcher.Close()
		fetcher = httpFetcher

		if cli.Sitemap {
			deps.Sitemaps = lchttp.NewSitemapService(httpFetcher.Client())
		}
	} else if cli.Sitemap {
		deps.Sitemaps = lchttp.NewSitemapService(nil)
	}

	var extractor linkcrawl.LinkExtractor = goquery.NewLinkExtractor()

	if cli.DB != "" {
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		defer m.Close()
		deps.Store = sqlite.NewCrawlStore(m.DB)
	}

	if logger != nil {
		fetcher = lcslog.NewLoggingFetcher(fetcher, logger)
		extractor = lcslog.NewLoggingExtractor(extractor, logger)
		if deps.Sitemaps != nil {
			deps.Sitemaps = lcslog.NewLoggingSitemapService(deps.Sitemaps, logger)
		}
		if deps.Store != nil {
			deps.Store = lcslog.NewLoggingCrawlStore(deps.Store, logger)
		}
	}

	coordinator := &crawl.Coordinator{
		Fetcher:     fetcher,
		Extractor:   extractor,
		Sitemaps:    deps.Sitemaps,
		Concurrency: cli.Workers,
		MaxDepth:    cli.MaxDepth,
		MaxPages:    cli.MaxPages,
		RetryDelays: crawl.RetryDelays(cli.Retries),
		Progress:    progressPrinter(deps.Stderr),
	}
	if cli.RPS > 0 {
		coordinator.RateLimiter = crawl.NewDomainLimiter(cli.RPS)
	}
	if cli.Bloom {
		coordinator.NewVisitedSet = bloom.NewDefaultSet
	}
	if logger != nil {
		coordinator.Logf = func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		}
	}

	deps.Batch = &crawl.Batch{
		Crawler:     coordinator,
		Concurrency: cli.Batch,
	}

	cmd := &CrawlCmd{
		Domain:       cli.Domain,
		List:         cli.List,
		OutputFile:   cli.OutputFile,
		CrawlTimeout: cli.CrawlTimeout,
	}
	return cmd.Run(deps)
}

// syncWriter serializes writes from concurrent crawls.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
