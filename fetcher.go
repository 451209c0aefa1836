package linkcrawl

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Page is a successfully fetched resource.
type Page struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL after redirects. Relative links on the page
	// resolve against it.
	FinalURL string

	StatusCode  int
	ContentType string

	// Body is the response body transcoded to UTF-8.
	Body []byte
}

// BaseURL returns the URL links on the page resolve against.
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Fetcher retrieves a single URL.
type Fetcher interface {
	// Fetch issues one GET for url. It never blocks longer than the
	// fetcher's configured timeout. Every failure is returned as a
	// *FetchError describing its kind.
	Fetch(ctx context.Context, url string) (*Page, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// FailureKind classifies a failed fetch.
type FailureKind string

// Fetch failure kinds.
const (
	FailureNone       FailureKind = ""
	FailureTimeout    FailureKind = "timeout"
	FailureConnection FailureKind = "connection_error"
	FailureHTTP       FailureKind = "http_error"
	FailureMalformed  FailureKind = "malformed_response"
	FailureCanceled   FailureKind = "canceled"
	FailureInternal   FailureKind = "internal_error"
)

// FetchError reports why a fetch failed.
type FetchError struct {
	Kind       FailureKind
	URL        string
	StatusCode int // set for FailureHTTP
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.Kind == FailureHTTP:
		return fmt.Sprintf("%s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.URL, e.Kind)
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the fetch may succeed.
func (e *FetchError) Transient() bool {
	switch e.Kind {
	case FailureTimeout, FailureConnection:
		return true
	case FailureHTTP:
		return e.StatusCode == 429 || e.StatusCode >= 500
	}
	return false
}

// FailureKindOf returns the failure kind carried by err.
// Errors that are not fetch errors are reported as connection errors,
// and a nil error as FailureNone.
func FailureKindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FailureCanceled
	}
	return FailureConnection
}

// IsHTML reports whether the page declares markup that may contain links.
// Pages without a Content-Type are treated as HTML.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return ct == "" || strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}
