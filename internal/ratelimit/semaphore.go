// Package ratelimit bounds two independent resources: how many
// simultaneous LLM calls the process makes, and how many requests a
// single caller IP can make in a fixed window.
package ratelimit

import (
	"context"
	"errors"
)

// ErrContextCanceled is returned when the context is cancelled while
// waiting for a ticket.
var ErrContextCanceled = errors.New("context canceled while waiting for LLM concurrency ticket")

// Semaphore bounds simultaneous LLM calls (spec.md §4.8's concurrency
// gate), adapted from the buffered-channel ticket pattern.
type Semaphore struct {
	tickets chan struct{}
}

// NewSemaphore builds a Semaphore with the given capacity. A
// non-positive limit returns nil, and a nil *Semaphore is a no-op in
// both Acquire and Release, so callers never need to branch on
// whether limiting is configured.
func NewSemaphore(limit int) *Semaphore {
	if limit <= 0 {
		return nil
	}
	return &Semaphore{tickets: make(chan struct{}, limit)}
}

// Acquire blocks until a ticket is available or ctx is cancelled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case s.tickets <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ErrContextCanceled
	}
}

// Release returns a ticket. Safe to call on a nil Semaphore.
func (s *Semaphore) Release() {
	if s == nil {
		return
	}
	select {
	case <-s.tickets:
	default:
	}
}
