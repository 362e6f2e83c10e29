package contentsearch

import (
	"context"
	"errors"
	"time"

	"github.com/avkrapivin/top-me-up-sub000/internal/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores raw upstream response bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration)
}

// MemoryCache keeps responses in a process-local LRU.
type MemoryCache struct {
	entries *utils.TTLCache[[]byte]
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := utils.NewTTLCache[[]byte](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	return c.entries.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) {
	c.entries.Set(key, body, ttl)
}

// RedisCache shares responses between instances. Redis errors degrade to cache misses.
type RedisCache struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewRedisCache(client *redis.Client, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, prefix: "search:", log: log}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("search cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return body, true
}

func (c *RedisCache) Set(ctx context.Context, key string, body []byte, ttl time.Duration) {
	if err := c.client.Set(ctx, c.prefix+key, body, ttl).Err(); err != nil {
		c.log.Warn("search cache set failed", zap.String("key", key), zap.Error(err))
	}
}
