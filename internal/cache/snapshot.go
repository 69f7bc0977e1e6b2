// Package cache provides the bounded LRU cache for derived result
// snapshots. Pipeline runs are deterministic, so a snapshot is reusable
// for as long as its dataset and configuration fingerprint match.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache is a fixed-capacity LRU keyed by configuration fingerprint.
// Concurrent callers computing the same key share a single computation.
type Cache[V any] struct {
	mu        sync.Mutex
	capacity  int
	ll        *list.List
	items     map[string]*list.Element
	group     singleflight.Group
	hitCount  int64
	missCount int64
	evictions int64
}

type entry[V any] struct {
	key   string
	value V
}

// New creates a cache holding at most capacity entries. A capacity of
// zero or less disables storage; GetOrCompute still computes.
func New[V any](capacity int) *Cache[V] {
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get retrieves a snapshot and marks it most recently used.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.missCount++
		var zero V
		return zero, false
	}

	c.ll.MoveToFront(el)
	c.hitCount++
	return el.Value.(*entry[V]).value, true
}

// GetOrCompute returns the cached snapshot for key, computing and
// storing it on a miss. Concurrent misses on the same key run compute
// once and share the result. A failed compute caches nothing.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have stored the value between the
		// miss and the flight starting.
		if v, ok := c.peek(key); ok {
			return v, nil
		}

		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// peek is Get without recency promotion or counter updates.
func (c *Cache[V]) peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		return el.Value.(*entry[V]).value, true
	}
	var zero V
	return zero, false
}

func (c *Cache[V]) set(key string, value V) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&entry[V]{key: key, value: value})
	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *Cache[V]) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
	c.evictions++
}

// Invalidate drops one key.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Purge drops every entry. Used when a new dataset replaces the old one.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.items = make(map[string]*list.Element)
}

// Stats returns cache statistics for the health endpoint.
func (c *Cache[V]) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	totalRequests := c.hitCount + c.missCount
	hitRatio := float64(0)
	if totalRequests > 0 {
		hitRatio = float64(c.hitCount) / float64(totalRequests)
	}

	return map[string]interface{}{
		"entries":    c.ll.Len(),
		"capacity":   c.capacity,
		"hit_count":  c.hitCount,
		"miss_count": c.missCount,
		"hit_ratio":  hitRatio,
		"evictions":  c.evictions,
	}
}

// Counters returns the raw hit, miss, and eviction totals. Callers
// tracking deltas diff successive calls.
func (c *Cache[V]) Counters() (hits, misses, evictions int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hitCount, c.missCount, c.evictions
}

// Fingerprint derives a stable cache key from the structural content of
// its parts. Parts must be JSON-encodable; encoding order is the
// argument order.
func Fingerprint(parts ...interface{}) string {
	h := sha256.New()
	for _, part := range parts {
		data, err := json.Marshal(part)
		if err != nil {
			// Fall back to the fmt representation; still deterministic
			// for the config types used as parts.
			data = []byte(fmt.Sprintf("%#v", part))
		}
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
