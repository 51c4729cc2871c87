package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/internal/metrics"
)

// GetOrLoad is the cache-aside read: on a hit the cached payload is
// returned verbatim; on a miss the loader runs, its result is written back
// with the given TTL and returned. A corrupt cached payload is dropped and
// treated as a miss.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if raw, ok := c.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.CacheHitTotal.Inc()
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		c.Delete(ctx, key)
	}
	metrics.CacheMissTotal.Inc()

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	Put(ctx, c, key, ttl, value)
	return value, nil
}

// Put writes a JSON-encoded value through to the cache. Encoding failures
// are logged and skipped; the caller already holds the authoritative value.
func Put[T any](ctx context.Context, c Cache, key string, ttl time.Duration, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}
	c.Set(ctx, key, raw, ttl)
}
