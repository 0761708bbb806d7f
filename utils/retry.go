package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// Retries is the number of attempts after the first one, so Retries=2 means
// at most three calls to fn. Pause is fixed between attempts and skipped after
// the last one.
type RetryConfig struct {
	Retries int
	Pause   time.Duration
	Logger  *Logger
}

// Attempts returns the total number of calls Do will make before giving up.
func (r *RetryConfig) Attempts() int {
	if r.Retries < 0 {
		return 1
	}
	return r.Retries + 1
}

// Do runs fn until it succeeds, the attempts are exhausted or ctx is done.
// The returned error wraps the last failure.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func(ctx context.Context) error) error {
	var lastErr error
	attempts := r.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if r.Logger != nil {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v", operationName, attempt, attempts, lastErr)
		}

		if attempt == attempts {
			break
		}
		if err := sleepCtx(ctx, r.Pause); err != nil {
			return fmt.Errorf("%s aborted after %d attempts: %w", operationName, attempt, err)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
