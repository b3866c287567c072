// Package cache 定义会话存储使用的键值缓存
package cache

import "context"

// Cache 会话键值缓存，过期时间由具体实现的配置决定
type Cache interface {
	// Get 读取 key，不存在时 ok 为 false 且 err 为 nil
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set 写入 key，覆盖已有值
	Set(ctx context.Context, key, value string) error

	// Del 删除 key，key 不存在不是错误
	Del(ctx context.Context, key string) error
}

// Scanner 可遍历 key 的缓存
type Scanner interface {
	// Scan 遍历以 prefix 开头的 key，fn 返回错误时停止并返回该错误
	Scan(ctx context.Context, prefix string, fn func(key string) error) error
}

// Taker 删除并报告 key 是否由本次调用删除，并发调用时最多一个返回 true
type Taker interface {
	Take(ctx context.Context, key string) (bool, error)
}

// ScanCache 同时支持读写与遍历
type ScanCache interface {
	Cache
	Scanner
}
