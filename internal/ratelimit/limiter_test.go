package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToMaxThenBlocks(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiterTracksIPsIndependently(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("5.6.7.8"))
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	l := NewLimiter(1, 10*time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestLimiterDisabledWhenMaxNonPositive(t *testing.T) {
	l := NewLimiter(0, time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}
}
