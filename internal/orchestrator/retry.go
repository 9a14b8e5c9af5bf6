package orchestrator

import (
	"context"
	"time"

	"edgarqa/internal/apperr"
)

// retryConfig is the exponential backoff contract from spec.md §4.8:
// up to 3 attempts, base delay 2s, cap 10s. It is the package-level
// defaultRetry value, reused across every Complete call rather than
// constructed per-call-site.
type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

var defaultRetry = retryConfig{maxAttempts: 3, baseDelay: 2 * time.Second, maxDelay: 10 * time.Second}

// completeWithRetry calls fn, retrying on error with exponential
// backoff up to cfg.maxAttempts times. The final failure is wrapped
// as apperr.LLMUnavailable, per spec.md §4.8's "surface LLMUnavailable
// to the caller" instruction.
func completeWithRetry(ctx context.Context, cfg retryConfig, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	delay := cfg.baseDelay

	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", apperr.Wrap(apperr.LLMUnavailable, "context cancelled during retry backoff", ctx.Err())
			}
			delay *= 2
			if delay > cfg.maxDelay {
				delay = cfg.maxDelay
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", apperr.Wrap(apperr.LLMUnavailable, "LLM call cancelled", ctx.Err())
		}
	}

	return "", apperr.Wrap(apperr.LLMUnavailable, "LLM endpoint unavailable after retries", lastErr)
}
