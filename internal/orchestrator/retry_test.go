package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgarqa/internal/apperr"
)

func TestCompleteWithRetrySucceedsAfterTransientFailures(t *testing.T) {
	cfg := retryConfig{maxAttempts: 3, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond}
	attempts := 0

	result, err := completeWithRetry(context.Background(), cfg, func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestCompleteWithRetryFailsAsLLMUnavailable(t *testing.T) {
	cfg := retryConfig{maxAttempts: 3, baseDelay: time.Millisecond, maxDelay: 5 * time.Millisecond}

	_, err := completeWithRetry(context.Background(), cfg, func(ctx context.Context) (string, error) {
		return "", errors.New("permanently down")
	})

	require.Error(t, err)
	assert.Equal(t, apperr.LLMUnavailable, apperr.KindOf(err))
}

func TestCompleteWithRetryRespectsCancellation(t *testing.T) {
	cfg := retryConfig{maxAttempts: 3, baseDelay: time.Hour, maxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	go func() {
		cancel()
	}()

	_, err := completeWithRetry(ctx, cfg, func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, apperr.LLMUnavailable, apperr.KindOf(err))
}
