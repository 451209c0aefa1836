package crawl

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/linkcrawl"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (*linkcrawl.Page, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return RetryDelays(3)
}

// RetryDelays returns n exponential backoff delays starting at one second.
func RetryDelays(n int) []time.Duration {
	if n <= 0 {
		return nil
	}
	delays := make([]time.Duration, n)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}

// FetchWithRetryDelays fetches url, retrying after each of delays when the
// failure is transient: timeouts, connection errors, HTTP 429 and 5xx.
// Other failures are returned at once. With no delays the URL is fetched
// exactly once. The logger function, if provided, is called for each retry.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (*linkcrawl.Page, error) {
	maxAttempts := len(delays) + 1 // 1 initial + N retries

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		page, err := fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 || !retryable(err) {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, &linkcrawl.FetchError{Kind: linkcrawl.FailureKindOf(ctx.Err()), URL: url, Err: ctx.Err()}
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

// retryable reports whether another attempt could succeed.
func retryable(err error) bool {
	var fe *linkcrawl.FetchError
	if errors.As(err, &fe) {
		return fe.Transient()
	}
	kind := linkcrawl.FailureKindOf(err)
	return kind == linkcrawl.FailureTimeout || kind == linkcrawl.FailureConnection
}
