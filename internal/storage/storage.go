package storage

import (
	"context"
	"os"
	"time"

	"modelsagent/internal/cache"
	"modelsagent/internal/core"
	"modelsagent/internal/util"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "modelsagent:"

// MemoryKeyCache keeps the public key set in an in-process LRU cache.
type MemoryKeyCache struct {
	lru *cache.LRUCache
	key string
}

// NewMemoryKeyCache creates an in-process key cache for the key set served by keysURL.
func NewMemoryKeyCache(keysURL string) *MemoryKeyCache {
	return &MemoryKeyCache{
		lru: cache.NewCacheWithCapacity(1),
		key: cache.KeySetCacheKey(keysURL),
	}
}

// GetKeys returns a copy of the cached key set.
func (m *MemoryKeyCache) GetKeys(_ context.Context) ([]core.PublicKey, bool) {
	v, ok := m.lru.Get(m.key)
	if !ok {
		return nil, false
	}
	keys, ok := v.([]core.PublicKey)
	if !ok {
		return nil, false
	}
	return append([]core.PublicKey(nil), keys...), true
}

// SetKeys stores a copy of keys for ttl.
func (m *MemoryKeyCache) SetKeys(_ context.Context, keys []core.PublicKey, ttl time.Duration) error {
	m.lru.Set(m.key, append([]core.PublicKey(nil), keys...), ttl)
	return nil
}

// Close stops the LRU sweeper.
func (m *MemoryKeyCache) Close() error {
	m.lru.Stop()
	return nil
}

// RedisKeyCache shares the public key set between replicas through Redis.
type RedisKeyCache struct {
	client *redis.Client
	key    string
}

// RedisKeyCacheConfig Redis key cache config
type RedisKeyCacheConfig struct {
	URL     string
	KeysURL string
}

// NewRedisKeyCache connects to Redis and verifies the connection with PING.
func NewRedisKeyCache(ctx context.Context, config RedisKeyCacheConfig) (*RedisKeyCache, error) {
	opts, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisKeyCache{
		client: client,
		key:    redisKeyPrefix + cache.KeySetCacheKey(config.KeysURL),
	}, nil
}

// GetKeys returns the key set stored in Redis. Read or decode failures count as a miss.
func (r *RedisKeyCache) GetKeys(ctx context.Context) ([]core.PublicKey, bool) {
	val, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		return nil, false
	}

	var keys []core.PublicKey
	if err := util.UnmarshalJSON(val, &keys); err != nil {
		return nil, false
	}
	return keys, true
}

// SetKeys stores keys with a Redis TTL.
func (r *RedisKeyCache) SetKeys(ctx context.Context, keys []core.PublicKey, ttl time.Duration) error {
	data, err := util.MarshalJSON(keys)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, ttl).Err()
}

// Close closes the Redis client.
func (r *RedisKeyCache) Close() error {
	return r.client.Close()
}

// InitKeyCache picks the key cache backend: Redis when REDIS_URL is set and
// reachable, the in-process cache otherwise.
func InitKeyCache(ctx context.Context, keysURL string, logger core.Logger) core.KeyCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		logger.Info("Using in-memory public key cache")
		return NewMemoryKeyCache(keysURL)
	}

	redisCache, err := NewRedisKeyCache(ctx, RedisKeyCacheConfig{URL: redisURL, KeysURL: keysURL})
	if err != nil {
		logger.Warn("Failed to initialize Redis key cache: %v, falling back to in-memory cache", err)
		return NewMemoryKeyCache(keysURL)
	}
	logger.Info("Using Redis public key cache")
	return redisCache
}
