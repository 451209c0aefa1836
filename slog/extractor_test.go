package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/linkcrawl/mock"
	lcslog "github.com/fwojciec/linkcrawl/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.LinkExtractor{
		ExtractLinksFn: func(baseURL string, html []byte) []string {
			return []string{"https://example.com/a", "https://example.com/b", "https://example.com/c"}
		},
	}

	extractor := lcslog.NewLoggingExtractor(inner, logger)
	links := extractor.ExtractLinks("https://example.com/", []byte("<html></html>"))

	assert.Len(t, links, 3)
	output := buf.String()
	assert.Contains(t, output, "extract links")
	assert.Contains(t, output, "url=https://example.com/")
	assert.Contains(t, output, "count=3")
}
