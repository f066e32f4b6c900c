// Package cache keeps short-lived copies of backend reads.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trezcool/challan/core"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	nowFunc = time.Now // mockable
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// New connects to redis when an address is configured and falls back to an in-process cache otherwise.
func New(conf *core.Config, logger core.Logger) Cache {
	if conf.Redis.Addr == "" {
		return NewMemoryCache()
	}
	rc, err := NewRedisCache(conf.Redis)
	if err != nil {
		if logger != nil {
			logger.Warn(fmt.Sprintf("redis unavailable, using memory cache: %v", err), err)
		}
		return NewMemoryCache()
	}
	return rc
}

type RedisCache struct {
	rdb *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(conf core.RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping %s: %w", conf.Addr, err)
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

type entry struct {
	val       []byte
	expiresAt time.Time // zero: never
}

// MemoryCache is a process-local Cache; expired entries are dropped when read.
type MemoryCache struct {
	sync.Mutex
	entries map[string]entry
}

var _ Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]entry)}
}

func (c *MemoryCache) get(key string) (entry, bool) {
	e, ok := c.entries[key]
	if ok && !e.expiresAt.IsZero() && !nowFunc().Before(e.expiresAt) {
		delete(c.entries, key)
		return entry{}, false
	}
	return e, ok
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.Lock()
	defer c.Unlock()
	e, ok := c.get(key)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	c.Lock()
	defer c.Unlock()
	e := entry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expiresAt = nowFunc().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.Lock()
	defer c.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *MemoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.Lock()
	defer c.Unlock()
	e, _ := c.get(key)
	var n int64
	if len(e.val) > 0 {
		var err error
		if n, err = strconv.ParseInt(string(e.val), 10, 64); err != nil {
			return 0, fmt.Errorf("incr %s: value is not an integer", key)
		}
	}
	n++
	e.val = []byte(strconv.FormatInt(n, 10))
	c.entries[key] = e
	return n, nil
}
