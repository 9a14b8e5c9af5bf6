package warehouse

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// cacheEntry is one memoised result, evicted on TTL expiry or LRU
// overflow.
type cacheEntry struct {
	key       string
	rows      []Row
	expiresAt time.Time
}

// Cache is a bounded TTL+LRU result cache keyed by hash(sql,
// canonical-JSON(params)). Reads and writes are atomic at entry
// granularity: a miss-then-write race may execute the query twice but
// never corrupts cache state (spec.md §5).
//
// No LRU library exists anywhere in the retrieval pack (checked); this
// hand-rolled container/list-backed LRU is the one standard-library
// piece of the Gateway, documented in DESIGN.md.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxSize  int
	entries  map[string]*list.Element // key -> list element wrapping *cacheEntry
	order    *list.List                // front = most recently used
	hits     int64
	misses   int64
}

// NewCache builds a Cache with the given TTL and max entry count.
func NewCache(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		order:   list.New(),
	}
}

// Key computes the cache key for a (sql, params) pair: a hash over the
// SQL text and the canonical (key-sorted) JSON encoding of params, so
// equivalent argument maps always collide regardless of Go map
// iteration order.
func Key(sql string, params map[string]any) string {
	h := sha256.New()
	h.Write([]byte(sql))
	h.Write([]byte{0})
	h.Write(canonicalJSON(params))
	return hex.EncodeToString(h.Sum(nil))
}

func canonicalJSON(params map[string]any) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		ordered = append(ordered, k, params[k])
	}
	b, _ := json.Marshal(ordered)
	return b
}

// Get returns the cached rows for key if present and unexpired.
func (c *Cache) Get(key string) ([]Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.order.Remove(el)
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hits++
	return entry.rows, true
}

// Put stores rows under key with the cache's configured TTL, evicting
// the least-recently-used entry if the cache is at capacity.
func (c *Cache) Put(key string, rows []Row) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).rows = rows
		el.Value.(*cacheEntry).expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(el)
		return
	}

	entry := &cacheEntry{key: key, rows: rows, expiresAt: time.Now().Add(c.ttl)}
	el := c.order.PushFront(entry)
	c.entries[key] = el

	for len(c.entries) > c.maxSize {
		back := c.order.Back()
		if back == nil {
			break
		}
		c.order.Remove(back)
		delete(c.entries, back.Value.(*cacheEntry).key)
	}
}

// Stats reports cache hit/miss counters and current size, backing the
// GET /cache/stats endpoint.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Size    int   `json:"size"`
	MaxSize int   `json:"max_size"`
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Size: len(c.entries), MaxSize: c.maxSize}
}

// Clear empties the cache, backing the DELETE /cache/clear endpoint.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order = list.New()
}
