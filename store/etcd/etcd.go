package etcd

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/kochabx/passport/log"
)

var (
	ErrNotInitialized = errors.New("etcd: client not initialized")
	ErrInvalidConfig  = errors.New("etcd: invalid config")
)

// Client etcd 客户端
type Client struct {
	client *clientv3.Client
	config *Config
	logger *log.Logger
}

// Option 客户端选项
type Option func(*Client)

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New 创建客户端并检查第一个端点的状态
func New(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if len(cfg.Endpoints) == 0 {
		return nil, ErrInvalidConfig
	}

	c := &Client{config: cfg, logger: log.G}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:            cfg.Endpoints,
		Username:             cfg.Username,
		Password:             cfg.Password,
		DialTimeout:          cfg.DialTimeout,
		DialKeepAliveTime:    cfg.KeepAliveTime,
		DialKeepAliveTimeout: cfg.KeepAliveTimeout,
		AutoSyncInterval:     cfg.AutoSyncInterval,
		MaxCallSendMsgSize:   cfg.MaxSendMsgSize,
		MaxCallRecvMsgSize:   cfg.MaxRecvMsgSize,
		RejectOldCluster:     cfg.RejectOldCluster,
		PermitWithoutStream:  cfg.PermitWithoutStream,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd: connect: %w", err)
	}
	c.client = client

	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	c.logger.Debug().Strs("endpoints", cfg.Endpoints).Msg("etcd client created")
	return c, nil
}

// Client 底层 clientv3 客户端
func (c *Client) Client() *clientv3.Client {
	return c.client
}

// Ping 请求第一个端点的状态
func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return ErrNotInitialized
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.Status(ctx, c.config.Endpoints[0])
	return err
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.RequestTimeout)
}

// leaseSeconds etcd 租约以秒为单位，不足一秒按一秒计
func leaseSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
