// Package http provides HTTP-based implementations of linkcrawl.Fetcher
// and linkcrawl.SitemapService.
package http

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/linkcrawl"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodyBytes caps the size of a response body.
const DefaultMaxBodyBytes = 5 << 20

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "linkcrawl/1.0"

// Ensure Fetcher implements linkcrawl.Fetcher at compile time.
var _ linkcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages using plain HTTP GET requests.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	insecure     bool
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a whole request, body included.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithInsecureSkipVerify disables TLS certificate verification so that
// hosts with self-signed or otherwise unverifiable certificates can be
// crawled. Verification is on unless this option is given with true.
func WithInsecureSkipVerify(skip bool) Option {
	return func(f *Fetcher) {
		f.insecure = skip
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes caps the response body size. Larger bodies are
// reported as malformed responses.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.timeout <= 0 {
		f.timeout = DefaultFetchTimeout
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = DefaultMaxBodyBytes
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: f.insecure, //nolint:gosec // opt-in, see WithInsecureSkipVerify
	}

	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// Client exposes the underlying HTTP client so that other services
// (e.g. sitemap discovery) share the same TLS policy and timeout.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch retrieves url and returns its body transcoded to UTF-8.
// Status codes of 400 and above are failures.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*linkcrawl.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &linkcrawl.FetchError{Kind: linkcrawl.FailureConnection, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &linkcrawl.FetchError{Kind: linkcrawl.FailureHTTP, URL: url, StatusCode: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		if fe := classify(ctx, url, err); fe.Kind != linkcrawl.FailureConnection {
			return nil, fe
		}
		return nil, &linkcrawl.FetchError{Kind: linkcrawl.FailureMalformed, URL: url, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	page := &linkcrawl.Page{
		URL:         url,
		FinalURL:    url,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}
	if resp.Request != nil && resp.Request.URL != nil {
		page.FinalURL = resp.Request.URL.String()
	}
	if page.IsHTML() {
		page.Body = toUTF8(body, contentType)
	}

	return page, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, fmt.Errorf("response body exceeds limit of %d bytes", f.maxBodyBytes)
	}
	return body, nil
}

// toUTF8 transcodes body using the charset declared in contentType or
// sniffed from the markup. The body is returned unchanged when it is
// already UTF-8 or cannot be decoded.
func toUTF8(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body
	}
	return decoded
}

// classify maps a transport error to a fetch failure.
func classify(ctx context.Context, url string, err error) *linkcrawl.FetchError {
	kind := linkcrawl.FailureConnection
	var netErr net.Error
	switch {
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		kind = linkcrawl.FailureCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		kind = linkcrawl.FailureTimeout
	}
	return &linkcrawl.FetchError{Kind: kind, URL: url, Err: err}
}
