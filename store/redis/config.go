package redis

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kochabx/passport/core/tag"
)

var (
	// ErrNil key 不存在
	ErrNil = redis.Nil

	ErrNilConfig      = errors.New("redis: nil config")
	ErrEmptyAddrs     = errors.New("redis: addrs cannot be empty")
	ErrInvalidTimeout = errors.New("redis: invalid timeout value")
)

// Config Redis 配置，按地址数量与 MasterName 自动选择单机/集群/哨兵模式
type Config struct {
	// 单机: ["localhost:6379"]；集群: 多个节点；哨兵: 哨兵地址并设置 MasterName
	Addrs      []string `json:"addrs" default:"localhost:6379"`
	MasterName string   `json:"masterName"`

	Username string `json:"username"`
	Password string `json:"password"`
	// 集群模式忽略
	DB int `json:"db"`

	// 2: RESP2；3: RESP3
	Protocol int `json:"protocol" default:"3"`

	DialTimeout  time.Duration `json:"dialTimeout" default:"5s"`
	ReadTimeout  time.Duration `json:"readTimeout" default:"3s"`
	WriteTimeout time.Duration `json:"writeTimeout" default:"3s"`

	// 0 表示 10 * GOMAXPROCS
	PoolSize     int           `json:"poolSize"`
	MinIdleConns int           `json:"minIdleConns"`
	MaxIdleTime  time.Duration `json:"maxIdleTime" default:"5m"`
	MaxLifetime  time.Duration `json:"maxLifetime"`
	PoolTimeout  time.Duration `json:"poolTimeout" default:"4s"`

	// -1 禁用重试，0 使用默认 3 次
	MaxRetries      int           `json:"maxRetries"`
	MinRetryBackoff time.Duration `json:"minRetryBackoff" default:"8ms"`
	MaxRetryBackoff time.Duration `json:"maxRetryBackoff" default:"512ms"`

	// TLS 启用 TLS，使用系统根证书
	TLS bool `json:"tls"`

	MaxRedirects   int  `json:"maxRedirects" default:"3"`
	ReadOnly       bool `json:"readOnly"`
	RouteByLatency bool `json:"routeByLatency"`
	RouteRandomly  bool `json:"routeRandomly"`

	// 通过 redisotel 接入全局 OpenTelemetry provider
	Tracing bool `json:"tracing"`
	Metrics bool `json:"metrics"`
}

func (c *Config) ApplyDefaults() error {
	return tag.ApplyDefaults(c)
}

// Single 单机模式配置
func Single(addr string) *Config {
	return &Config{Addrs: []string{addr}}
}

// Cluster 集群模式配置
func Cluster(addrs ...string) *Config {
	return &Config{Addrs: addrs}
}

// Sentinel 哨兵模式配置
func Sentinel(masterName string, addrs ...string) *Config {
	return &Config{Addrs: addrs, MasterName: masterName}
}

func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return ErrEmptyAddrs
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}

func (c *Config) IsSentinel() bool {
	return c.MasterName != ""
}

func (c *Config) IsCluster() bool {
	return len(c.Addrs) > 1 && c.MasterName == ""
}

func (c *Config) IsSingle() bool {
	return len(c.Addrs) == 1 && c.MasterName == ""
}

// Mode single/cluster/sentinel
func (c *Config) Mode() string {
	switch {
	case c.IsSentinel():
		return "sentinel"
	case c.IsCluster():
		return "cluster"
	default:
		return "single"
	}
}
