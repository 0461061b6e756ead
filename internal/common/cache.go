package common

import (
	"sync"
	"time"
)

const defaultCacheTTL = 15 * time.Minute

type cacheEntry[V any] struct {
	expiry time.Time
	value  V
}

// TTLCache is a concurrency-safe map whose entries expire after a fixed TTL.
// A background goroutine evicts expired entries until Close is called.
type TTLCache[V any] struct {
	entries map[string]cacheEntry[V]
	stopCh  chan struct{}
	now     func() time.Time
	ttl     time.Duration
	mu      sync.RWMutex
	once    sync.Once
}

// NewTTLCache creates a cache. A zero ttl means 15 minutes.
func NewTTLCache[V any](ttl time.Duration) *TTLCache[V] {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	cache := &TTLCache[V]{
		entries: make(map[string]cacheEntry[V]),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

// Get returns the live value for key.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		var zero V
		return zero, false
	}
	return entry.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{value: value, expiry: c.now().Add(c.ttl)}
}

// Len counts stored entries, expired or not.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *TTLCache[V]) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *TTLCache[V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

// Close stops the cleanup goroutine.
func (c *TTLCache[V]) Close() {
	c.once.Do(func() { close(c.stopCh) })
}
