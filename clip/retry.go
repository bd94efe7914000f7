package clip

import (
	"context"
	"time"

	"github.com/fwojciec/clipnote"
)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for open retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// OpenWithRetry opens url, retrying failed attempts after each of delays.
// Errors that a retry cannot fix (invalid input, missing or forbidden pages)
// are returned immediately.
func OpenWithRetry(ctx context.Context, f clipnote.Fetcher, url string, logger LogFunc, delays []time.Duration) (clipnote.PageSource, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		src, err := f.Open(ctx, url)
		if err == nil {
			return src, nil
		}
		lastErr = err

		if !retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}

func retryable(err error) bool {
	switch clipnote.ErrorCode(err) {
	case clipnote.EINVALID, clipnote.ENOTFOUND, clipnote.EFORBIDDEN:
		return false
	}
	return true
}
