package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/directory"
	dirdb "github.com/kochabx/passport/core/auth/directory/db"
	"github.com/kochabx/passport/core/auth/session"
	"github.com/kochabx/passport/core/auth/session/cache"
	etcdcache "github.com/kochabx/passport/core/auth/session/cache/etcd"
	rediscache "github.com/kochabx/passport/core/auth/session/cache/redis"
	"github.com/kochabx/passport/errors"
	"github.com/kochabx/passport/log"
	"github.com/kochabx/passport/store/db"
	"github.com/kochabx/passport/store/etcd"
	"github.com/kochabx/passport/store/kafka"
	"github.com/kochabx/passport/store/redis"
	transporthttp "github.com/kochabx/passport/transport/http"
)

// deps 按需创建的外部依赖，close 逆序释放
type deps struct {
	cfg    *Config
	logger *log.Logger

	redis  *redis.Client
	etcd   *etcd.Client
	db     *db.Client
	kafka  *kafka.Client
	cache  cache.Cache
	dir    directory.Directory
	sink   audit.Sink
	closes []func() error
}

func newDeps(cfg *Config, logger *log.Logger) *deps {
	return &deps{cfg: cfg, logger: logger}
}

func (d *deps) onClose(fn func() error) {
	d.closes = append(d.closes, fn)
}

func (d *deps) close() error {
	var errs []error
	for i := len(d.closes) - 1; i >= 0; i-- {
		if err := d.closes[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closes = nil
	return errors.Join(errs...)
}

// sessionCache 按 cache.backend 创建会话缓存
func (d *deps) sessionCache(ctx context.Context) (cache.Cache, error) {
	if d.cache != nil {
		return d.cache, nil
	}

	switch d.cfg.Cache.Backend {
	case backendEtcd:
		client, err := etcd.New(ctx, &d.cfg.Etcd, etcd.WithLogger(d.logger))
		if err != nil {
			return nil, fmt.Errorf("connect etcd: %w", err)
		}
		d.etcd = client
		d.onClose(client.Close)
		d.cache = etcdcache.New(client,
			etcdcache.WithTTL(d.cfg.cacheTTL()),
			etcdcache.WithPageSize(d.cfg.Cache.ScanCount),
		)
	default:
		opts := []redis.Option{redis.WithLogger(d.logger)}
		if d.cfg.Cache.Debug {
			opts = append(opts, redis.WithCommandLog(d.cfg.Cache.SlowCommand))
		}
		if d.cfg.Redis.Tracing {
			// 命令参数含令牌，不写入 span
			opts = append(opts, redis.WithTracing(redisotel.WithDBStatement(false)))
		}
		if d.cfg.Redis.Metrics {
			opts = append(opts, redis.WithMetrics())
		}
		client, err := redis.New(ctx, &d.cfg.Redis, opts...)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		d.redis = client
		d.onClose(client.Close)
		d.cache = rediscache.New(client,
			rediscache.WithTTL(d.cfg.cacheTTL()),
			rediscache.WithScanCount(d.cfg.Cache.ScanCount),
		)
	}
	return d.cache, nil
}

// directory 数据库用户目录
func (d *deps) directory() (directory.Directory, error) {
	if d.dir != nil {
		return d.dir, nil
	}

	client, err := db.New(d.cfg.Database, db.WithLogger(d.logger))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	d.db = client
	d.onClose(client.Close)
	d.dir = dirdb.New(client.DB(), dirdb.WithTable(d.cfg.Directory.Table))
	return d.dir, nil
}

// auditSink audit.enabled 为 false 时丢弃事件
func (d *deps) auditSink() (audit.Sink, error) {
	if d.sink != nil {
		return d.sink, nil
	}

	switch {
	case !d.cfg.Audit.Enabled:
		d.sink = audit.NoopSink{}
	case d.cfg.Audit.Sink == sinkKafka:
		client, err := kafka.New(&d.cfg.Audit.Kafka, kafka.WithLogger(d.logger))
		if err != nil {
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		d.kafka = client
		d.onClose(client.Close)
		w, err := client.AsyncProducer(d.cfg.Audit.Topic)
		if err != nil {
			return nil, err
		}
		d.sink = audit.NewKafkaSink(w, d.logger)
	default:
		d.sink = audit.NewLogSink(d.logger)
	}
	return d.sink, nil
}

// service 组装会话服务；dir 为 nil 时使用空目录，只能执行令牌相关操作
func (d *deps) service(ctx context.Context, dir directory.Directory, m *session.Metrics) (*session.Service, error) {
	c, err := d.sessionCache(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := d.auditSink()
	if err != nil {
		return nil, err
	}
	if dir == nil {
		dir = directory.NewStatic()
	}

	return session.New(&d.cfg.Session, c, dir,
		session.WithLogger(d.logger),
		session.WithAuditSink(sink),
		session.WithMetrics(m),
	)
}

// healthChecks 已创建的依赖
func (d *deps) healthChecks() []transporthttp.HealthCheck {
	var checks []transporthttp.HealthCheck
	if d.redis != nil {
		checks = append(checks, transporthttp.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			if h := d.redis.Health(ctx); !h.Healthy {
				return errors.ServiceUnavailable("%s", h.Error)
			}
			return nil
		}})
	}
	if d.etcd != nil {
		checks = append(checks, transporthttp.HealthCheck{Name: "etcd", Check: d.etcd.Ping})
	}
	if d.db != nil {
		checks = append(checks, transporthttp.HealthCheck{Name: "database", Check: d.db.Ping})
	}
	return checks
}
