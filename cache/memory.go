package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryCache implements Cache with an in-process ttlcache. It is the
// fallback when no Redis address is configured, and the cache used in
// tests.
type MemoryCache struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryCache creates a memory cache with automatic expiry cleanup.
func NewMemoryCache() *MemoryCache {
	c := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go c.Start()

	return &MemoryCache{cache: c}
}

// Get implements Cache.Get.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	item := m.cache.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false
	}
	return item.Value(), true
}

// Set implements Cache.Set.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.cache.Set(key, value, ttl)
}

// Delete implements Cache.Delete.
func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.cache.Delete(key)
}

// Close stops the expiry cleanup goroutine.
func (m *MemoryCache) Close() {
	m.cache.Stop()
}

var _ Cache = (*MemoryCache)(nil)
