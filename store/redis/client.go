package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/passport/log"
)

// Client Redis 统一客户端
type Client struct {
	client redis.UniversalClient
	config *Config
	logger *log.Logger
}

// New 创建客户端，创建后立即 PING
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &clientOptions{logger: log.G}
	for _, opt := range opts {
		opt(o)
	}
	c := &Client{
		config: cfg,
		logger: o.logger.Named("redis"),
		client: redis.NewUniversalClient(universalOptions(cfg)),
	}

	if err := c.instrument(o); err != nil {
		_ = c.client.Close()
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		_ = c.client.Close()
		return nil, err
	}

	c.logger.Debug().Str("mode", cfg.Mode()).Strs("addrs", cfg.Addrs).Msg("redis client created")
	return c, nil
}

func universalOptions(cfg *Config) *redis.UniversalOptions {
	poolSize := cfg.PoolSize
	if poolSize == 0 {
		poolSize = 10 * runtime.GOMAXPROCS(0)
	}

	opts := &redis.UniversalOptions{
		Addrs:      cfg.Addrs,
		MasterName: cfg.MasterName,
		Username:   cfg.Username,
		Password:   cfg.Password,
		DB:         cfg.DB,
		Protocol:   cfg.Protocol,

		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		PoolSize:        poolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxIdleTime: cfg.MaxIdleTime,
		ConnMaxLifetime: cfg.MaxLifetime,
		PoolTimeout:     cfg.PoolTimeout,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,

		MaxRedirects:   cfg.MaxRedirects,
		ReadOnly:       cfg.ReadOnly,
		RouteByLatency: cfg.RouteByLatency,
		RouteRandomly:  cfg.RouteRandomly,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

func (c *Client) instrument(o *clientOptions) error {
	if o.tracing != nil {
		if err := redisotel.InstrumentTracing(c.client, o.tracing...); err != nil {
			return fmt.Errorf("redis: instrument tracing: %w", err)
		}
	}
	if o.metrics != nil {
		if err := redisotel.InstrumentMetrics(c.client, o.metrics...); err != nil {
			return fmt.Errorf("redis: instrument metrics: %w", err)
		}
	}
	if o.commandLog {
		c.client.AddHook(commandLog{logger: c.logger, slow: o.slow})
	}
	for _, hook := range o.hooks {
		c.client.AddHook(hook)
	}
	return nil
}

// UniversalClient 底层客户端
func (c *Client) UniversalClient() redis.UniversalClient {
	return c.client
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Client) Close() error {
	err := c.client.Close()
	c.logger.Debug().Msg("redis client closed")
	return err
}

// Stats 连接池统计
func (c *Client) Stats() *redis.PoolStats {
	return c.client.PoolStats()
}

// Mode 客户端模式
func (c *Client) Mode() string {
	return c.config.Mode()
}

// Scan 遍历匹配 prefix 的全部 key，集群模式下遍历每个主节点。fn 返回错误时停止
func (c *Client) Scan(ctx context.Context, prefix string, count int64, fn func(key string) error) error {
	match := escapeGlob(prefix) + "*"

	if cc, ok := c.client.(*redis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return scanNode(ctx, node, match, count, fn)
		})
	}
	return scanNode(ctx, c.client, match, count, fn)
}

func scanNode(ctx context.Context, cmd redis.Cmdable, match string, count int64, fn func(string) error) error {
	iter := cmd.Scan(ctx, 0, match, count).Iterator()
	for iter.Next(ctx) {
		if err := fn(iter.Val()); err != nil {
			return err
		}
	}
	return iter.Err()
}

// escapeGlob 转义 MATCH 模式中的特殊字符
func escapeGlob(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	return string(b)
}

// HealthStatus 健康状态
type HealthStatus struct {
	Healthy   bool             `json:"healthy"`
	Mode      string           `json:"mode"`
	Latency   time.Duration    `json:"latency"`
	PoolStats *redis.PoolStats `json:"poolStats,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Health 执行一次 PING 并返回状态
func (c *Client) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{Mode: c.config.Mode()}

	start := time.Now()
	err := c.Ping(ctx)
	status.Latency = time.Since(start)

	if err != nil {
		status.Error = err.Error()
		c.logger.Error().Dur("latency", status.Latency).Err(err).Msg("redis health check failed")
		return status
	}
	status.Healthy = true
	status.PoolStats = c.Stats()
	return status
}
