package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketPacesPerModel(t *testing.T) {
	tb := NewTokenBucket(60) // ~1 token/sec, burst 1
	ctx := context.Background()

	require.NoError(t, tb.Acquire(ctx, "model-a"))

	start := time.Now()
	require.NoError(t, tb.Acquire(ctx, "model-a"))
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestTokenBucketTracksModelsIndependently(t *testing.T) {
	tb := NewTokenBucket(60)
	ctx := context.Background()

	require.NoError(t, tb.Acquire(ctx, "model-a"))

	start := time.Now()
	require.NoError(t, tb.Acquire(ctx, "model-b"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestNilTokenBucketIsANoOp(t *testing.T) {
	var tb *TokenBucket
	assert.NoError(t, tb.Acquire(context.Background(), "anything"))
}

func TestNonPositiveRateReturnsNilTokenBucket(t *testing.T) {
	assert.Nil(t, NewTokenBucket(0))
	assert.Nil(t, NewTokenBucket(-5))
}

func TestTokenBucketAcquireRespectsContextCancellation(t *testing.T) {
	tb := NewTokenBucket(1) // one request per minute, burst 1
	ctx := context.Background()
	require.NoError(t, tb.Acquire(ctx, "model-a"))

	cancelCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tb.Acquire(cancelCtx, "model-a")
	assert.Error(t, err)
}
