package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain verifies no goroutine started by a Semaphore/TokenBucket
// test (including a blocked Acquire left waiting past its context
// deadline) leaks past the package's test run.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSemaphoreLimitsConcurrency(t *testing.T) {
	sem := NewSemaphore(2)
	ctx := context.Background()

	require.NoError(t, sem.Acquire(ctx))
	require.NoError(t, sem.Acquire(ctx))

	acquired := make(chan struct{})
	go func() {
		_ = sem.Acquire(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("third Acquire should have blocked while two tickets are held")
	case <-time.After(20 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("third Acquire did not unblock after Release")
	}
	sem.Release()
	sem.Release()
}

func TestSemaphoreAcquireReturnsOnContextCancel(t *testing.T) {
	sem := NewSemaphore(1)
	require.NoError(t, sem.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- sem.Acquire(ctx)
	}()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrContextCanceled)
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after context cancellation")
	}
	sem.Release()
}

func TestNilSemaphoreIsANoOp(t *testing.T) {
	var sem *Semaphore
	assert.NoError(t, sem.Acquire(context.Background()))
	sem.Release() // must not panic
}

func TestNonPositiveLimitReturnsNilSemaphore(t *testing.T) {
	assert.Nil(t, NewSemaphore(0))
	assert.Nil(t, NewSemaphore(-1))
}

func TestSemaphoreReleaseWithoutAcquireDoesNotPanic(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Release()
}

func TestSemaphoreConcurrentUseNeverExceedsCapacity(t *testing.T) {
	const capacity = 3
	sem := NewSemaphore(capacity)
	var active int32
	var mu sync.Mutex
	var maxSeen int32

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sem.Acquire(context.Background())
			defer sem.Release()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, maxSeen, int32(capacity))
}
