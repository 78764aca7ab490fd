// Package memo provides a concurrent get-or-compute-once map.
package memo

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache stores at most one value per key. Concurrent misses on the same key
// share a single computation and the first stored value is final. Failed
// computations are returned to every waiter and never stored.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	group   singleflight.Group
	keyFn   func(K) string
}

// New returns an empty Cache. keyFn maps a key to the string used to
// coalesce concurrent computations; it must be injective.
func New[K comparable, V any](keyFn func(K) string) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
		keyFn:   keyFn,
	}
}

// NewString returns a Cache keyed by strings.
func NewString[V any]() *Cache[string, V] {
	return New[string, V](func(s string) string { return s })
}

// Load returns the stored value for key, if any.
func (c *Cache[K, V]) Load(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// GetOrCompute returns the stored value for key, computing it with fn on a
// miss. computed reports whether fn ran on behalf of this caller.
func (c *Cache[K, V]) GetOrCompute(key K, fn func() (V, error)) (v V, computed bool, err error) {
	if v, ok := c.Load(key); ok {
		return v, false, nil
	}

	res, err, _ := c.group.Do(c.keyFn(key), func() (any, error) {
		// A previous flight may have stored the key between Load and Do.
		if v, ok := c.Load(key); ok {
			return v, nil
		}
		computed = true
		v, err := fn()
		if err != nil {
			return v, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if existing, ok := c.entries[key]; ok {
			return existing, nil
		}
		c.entries[key] = v
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, computed, err
	}
	return res.(V), computed, nil
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
