// Package redis provides the Redis-backed implementation of cache.Cache.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/libris-app/libris/cache"
)

// Cache implements cache.Cache on a Redis client. Transient Redis failures
// degrade to a miss (Get) or a no-op (Set/Delete); they are logged and
// never returned to the caller.
type Cache struct {
	client *redis.Client
	prefix string
}

// New creates a Redis cache. Keys are stored under the given prefix.
func New(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (r *Cache) redisKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

// Get implements cache.Cache.Get.
func (r *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("redis get failed, treating as miss")
		}
		return nil, false
	}
	return raw, true
}

// Set implements cache.Cache.Set.
func (r *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, r.redisKey(key), value, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis set failed, entry not cached")
	}
}

// Delete implements cache.Cache.Delete.
func (r *Cache) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.redisKey(key)).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis delete failed")
	}
}

var _ cache.Cache = (*Cache)(nil)
