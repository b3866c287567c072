// Package etcd 基于 etcd 的会话缓存，过期通过租约实现
package etcd

import (
	"context"
	"time"

	"github.com/kochabx/passport/core/auth/session/cache"
	"github.com/kochabx/passport/store/etcd"
)

// Cache etcd 会话缓存
type Cache struct {
	client   *etcd.Client
	ttl      time.Duration
	pageSize int64
}

var (
	_ cache.ScanCache = (*Cache)(nil)
	_ cache.Taker     = (*Cache)(nil)
)

// Option Cache 选项
type Option func(*Cache)

// WithTTL 每次写入绑定的租约时长，0 表示不绑定租约
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPageSize 遍历时每页 key 数量，默认 500
func WithPageSize(n int64) Option {
	return func(c *Cache) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func New(client *etcd.Client, opts ...Option) *Cache {
	c := &Cache{client: client, pageSize: 500}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	return c.client.Get(ctx, key)
}

func (c *Cache) Set(ctx context.Context, key, value string) error {
	return c.client.Put(ctx, key, value, c.ttl)
}

func (c *Cache) Del(ctx context.Context, key string) error {
	_, err := c.client.Delete(ctx, key)
	return err
}

func (c *Cache) Take(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Delete(ctx, key)
	return n > 0, err
}

func (c *Cache) Scan(ctx context.Context, prefix string, fn func(key string) error) error {
	return c.client.ScanPrefix(ctx, prefix, c.pageSize, fn)
}
