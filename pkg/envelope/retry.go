package envelope

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds the exponential-backoff retry helper used for health
// gating (spec.md §4.1 waitForGreen: delayMs = 2^attempt * 100, capped per
// attempt). AttemptTimeout bounds how long a single call to fn may run
// ("per-attempt wait <= 2s" in spec.md §4.1) and is independent of the
// backoff delay between attempts — the two are distinct bounds in the spec,
// not the same growing value.
type RetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
}

// DefaultRetryConfig matches spec.md §4.1's waitForGreen bounds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    10,
		BaseDelay:      100 * time.Millisecond,
		MaxDelay:       2 * time.Second,
		AttemptTimeout: 2 * time.Second,
	}
}

// Retry calls fn until it succeeds, ctx is cancelled, or MaxAttempts are
// exhausted, sleeping delay = min(BaseDelay*2^attempt, MaxDelay) between
// attempts. Each call to fn is independently bounded by AttemptTimeout. The
// last error is wrapped and returned on exhaustion.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = cfg.MaxDelay
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		delay := cfg.BaseDelay * time.Duration(1<<uint(attempt))
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}

		attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("envelope: retry exhausted after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
