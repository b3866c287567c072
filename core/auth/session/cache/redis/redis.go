// Package redis 基于 Redis 的会话缓存
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/kochabx/passport/core/auth/session/cache"
	"github.com/kochabx/passport/store/redis"
)

// Cache Redis 会话缓存
type Cache struct {
	client    *redis.Client
	ttl       time.Duration
	scanCount int64
}

var (
	_ cache.ScanCache = (*Cache)(nil)
	_ cache.Taker     = (*Cache)(nil)
)

// Option Cache 选项
type Option func(*Cache)

// WithTTL 写入时设置的过期时间，0 表示永不过期
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithScanCount SCAN 每批建议数量，默认 100
func WithScanCount(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.scanCount = n
		}
	}
}

// New 创建 Redis 会话缓存
func New(client *redis.Client, opts ...Option) *Cache {
	c := &Cache{client: client, scanCount: 100}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.UniversalClient().Get(ctx, key).Result()
	if errors.Is(err, redis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	return c.client.UniversalClient().Set(ctx, key, value, c.ttl).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.client.UniversalClient().Del(ctx, key).Err()
}

// Take DEL 返回删除数量
func (c *Cache) Take(ctx context.Context, key string) (bool, error) {
	n, err := c.client.UniversalClient().Del(ctx, key).Result()
	return n > 0, err
}

func (c *Cache) Scan(ctx context.Context, prefix string, fn func(key string) error) error {
	return c.client.Scan(ctx, prefix, c.scanCount, fn)
}
