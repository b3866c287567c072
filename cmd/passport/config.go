package main

import (
	"time"

	"github.com/kochabx/passport/core/auth/session"
	"github.com/kochabx/passport/log"
	"github.com/kochabx/passport/store/db"
	"github.com/kochabx/passport/store/etcd"
	"github.com/kochabx/passport/store/kafka"
	"github.com/kochabx/passport/store/redis"
	"github.com/kochabx/passport/transport/http"
)

// Config passport.yaml
type Config struct {
	Session   session.Config        `json:"session"`
	Cache     CacheConfig           `json:"cache"`
	Redis     redis.Config          `json:"redis"`
	Etcd      etcd.Config           `json:"etcd"`
	Database  db.Config             `json:"database"`
	Directory DirectoryConfig       `json:"directory"`
	Log       log.Config            `json:"log"`
	HTTP      http.Config           `json:"http"`
	Sweeper   session.SweeperConfig `json:"sweeper"`
	Audit     AuditConfig           `json:"audit"`
}

const (
	backendRedis = "redis"
	backendEtcd  = "etcd"
)

// CacheConfig 会话缓存后端
type CacheConfig struct {
	Backend string        `json:"backend" default:"redis" validate:"oneof=redis etcd"`
	// 0 表示使用 session.refreshTTL
	TTL     time.Duration `json:"ttl" validate:"gte=0"`

	// etcd 前缀遍历分页大小，redis SCAN 的 COUNT
	ScanCount int64 `json:"scanCount" default:"100" validate:"gt=0"`

	// 记录 redis 命令耗时，超过 slowCommand 记为 warn
	Debug       bool          `json:"debug"`
	SlowCommand time.Duration `json:"slowCommand" default:"50ms"`
}

// DirectoryConfig 用户目录
type DirectoryConfig struct {
	Table string `json:"table" default:"users"`
}

const (
	sinkLog   = "log"
	sinkKafka = "kafka"
)

// AuditConfig 审计事件投递
type AuditConfig struct {
	Enabled bool         `json:"enabled"`
	Sink    string       `json:"sink" default:"log" validate:"oneof=log kafka"`
	Topic   string       `json:"topic" default:"passport.audit"`
	Kafka   kafka.Config `json:"kafka"`
}

func (c *Config) cacheTTL() time.Duration {
	if c.Cache.TTL > 0 {
		return c.Cache.TTL
	}
	return c.Session.RefreshTTL
}
