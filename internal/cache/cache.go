// Package cache is an in-memory TTL cache with a background janitor.
package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time
}

func (i item[V]) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && now.After(i.expiresAt)
}

// Cache maps K to V with per-entry expiry.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]item[V]
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache that sweeps expired entries every cleanupInterval.
// A non-positive interval disables the janitor.
func New[K comparable, V any](cleanupInterval time.Duration) *Cache[K, V] {
	c := &Cache[K, V]{
		items: make(map[K]item[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

// Get returns the value for key if present and not expired.
func (c *Cache[K, V]) Get(_ context.Context, key K) (V, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || it.expired(c.now()) {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value for ttl. A non-positive ttl never expires.
func (c *Cache[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	it := item[V]{value: value}
	if ttl > 0 {
		it.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
}

// Delete removes key.
func (c *Cache[K, V]) Delete(_ context.Context, key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the janitor.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache[K, V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *Cache[K, V]) sweep() {
	now := c.now()
	c.mu.Lock()
	for k, it := range c.items {
		if it.expired(now) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}
