package api

import (
	"context"
	"time"
)

const (
	defaultAttempts  = 3
	defaultBaseDelay = 100 * time.Millisecond
)

// retry runs op up to attempts times with exponential backoff, stopping
// early on success, on errors that retrying cannot fix, or when ctx ends.
func retry(ctx context.Context, attempts int, baseDelay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || i == attempts-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
	return lastErr
}
