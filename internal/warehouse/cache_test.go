package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyOrderIndependent(t *testing.T) {
	k1 := Key("SELECT 1", map[string]any{"a": 1, "b": 2})
	k2 := Key("SELECT 1", map[string]any{"b": 2, "a": 1})
	assert.Equal(t, k1, k2)
}

func TestCacheGetPutConsistency(t *testing.T) {
	c := NewCache(time.Minute, 10)
	key := Key("SELECT * FROM x", map[string]any{"year": 2023})

	_, ok := c.Get(key)
	require.False(t, ok)

	rows := []Row{{Columns: []string{"a"}, Values: []any{1}}}
	c.Put(key, rows)

	first, ok := c.Get(key)
	require.True(t, ok)
	second, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(time.Millisecond, 10)
	key := Key("SELECT 1", nil)
	c.Put(key, []Row{{Columns: []string{"a"}, Values: []any{1}}})
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewCache(time.Minute, 2)
	c.Put("a", []Row{{Columns: []string{"x"}, Values: []any{1}}})
	c.Put("b", []Row{{Columns: []string{"x"}, Values: []any{2}}})
	// touch "a" so it becomes most-recently-used
	c.Get("a")
	c.Put("c", []Row{{Columns: []string{"x"}, Values: []any{3}}})

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted as least-recently-used")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCacheStats(t *testing.T) {
	c := NewCache(time.Minute, 10)
	c.Get("missing")
	c.Put("k", []Row{{Columns: []string{"x"}, Values: []any{1}}})
	c.Get("k")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}
