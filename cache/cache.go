// Package cache defines the key/value cache contract shared by all
// services and the cache-aside helper built on top of it.
//
// The contract is deliberately lossy: implementations absorb backend
// failures (logged, degraded to a miss or a no-op) and never surface an
// error to the caller. The backing store is always the source of truth.
package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Cache is a byte-oriented KV store with per-entry TTL.
type Cache interface {
	// Get returns the cached value and whether it was present. Backend
	// failures report a miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. Backend failures are a no-op.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes key. Backend failures are a no-op.
	Delete(ctx context.Context, key string)
}

// Key builds a deterministic cache key from a namespace and a field map:
// "namespace:k1=v1&k2=v2" with keys sorted and empty values omitted.
// Equivalent inputs always produce the same key regardless of map order.
func Key(namespace string, fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		if value == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte(':')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(fields[name])
	}
	return b.String()
}
