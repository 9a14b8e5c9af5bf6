package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// TokenBucket paces LLM calls per model at a steady rate, on top of
// the hard concurrency ceiling Semaphore enforces, adapted from the
// per-model limiter map pattern used for the equivalent LLM pacing
// concern in the retrieval pack.
type TokenBucket struct {
	mu         sync.RWMutex
	limiters   map[string]*rate.Limiter
	limit      rate.Limit
	burst      int
}

// NewTokenBucket builds a TokenBucket allowing ratePerMin requests per
// minute per model name, with burst capped to 1 for strict pacing. A
// non-positive ratePerMin disables pacing (Acquire always succeeds
// immediately).
func NewTokenBucket(ratePerMin int) *TokenBucket {
	if ratePerMin <= 0 {
		return nil
	}
	return &TokenBucket{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(ratePerMin) / 60.0),
		burst:    1,
	}
}

func (tb *TokenBucket) limiterFor(model string) *rate.Limiter {
	tb.mu.RLock()
	l, ok := tb.limiters[model]
	tb.mu.RUnlock()
	if ok {
		return l
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if l, ok = tb.limiters[model]; ok {
		return l
	}
	l = rate.NewLimiter(tb.limit, tb.burst)
	tb.limiters[model] = l
	return l
}

// Acquire blocks until a token for model is available or ctx is
// cancelled. Safe to call on a nil TokenBucket.
func (tb *TokenBucket) Acquire(ctx context.Context, model string) error {
	if tb == nil {
		return nil
	}
	return tb.limiterFor(model).Wait(ctx)
}
