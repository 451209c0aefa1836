package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// Ensure LoggingExtractor implements linkcrawl.LinkExtractor.
var _ linkcrawl.LinkExtractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps a LinkExtractor with debug logging.
type LoggingExtractor struct {
	next   linkcrawl.LinkExtractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next linkcrawl.LinkExtractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs the link count.
func (e *LoggingExtractor) ExtractLinks(baseURL string, html []byte) []string {
	begin := time.Now()
	links := e.next.ExtractLinks(baseURL, html)
	e.logger.Info("extract links",
		"url", baseURL,
		"count", len(links),
		"duration", time.Since(begin),
	)
	return links
}
