package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/log"
)

// Client gorm 连接
type Client struct {
	gdb    *gorm.DB
	sqlDB  *sql.DB
	driver Driver
	logger *log.Logger
}

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger      *log.Logger
	plugins     []gorm.Plugin
	pingTimeout time.Duration
}

func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPlugins 注册 gorm 插件
func WithPlugins(plugins ...gorm.Plugin) Option {
	return func(o *clientOptions) {
		o.plugins = append(o.plugins, plugins...)
	}
}

func WithPingTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// New 打开连接并 ping 一次
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := tag.ApplyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("db: apply defaults: %w", err)
	}
	o := &clientOptions{logger: log.G, pingTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}

	d, err := cfg.dialect()
	if err != nil {
		return nil, err
	}
	dsn, err := d.DSN()
	if err != nil {
		return nil, fmt.Errorf("db: build %s dsn: %w", cfg.Driver, err)
	}

	lg := o.logger.Named("db")
	gdb, err := gorm.Open(d.open(dsn), &gorm.Config{
		Logger: logger.New(gormWriter{lg}, logger.Config{
			SlowThreshold:             cfg.SlowThreshold,
			LogLevel:                  cfg.gormLevel(),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver, err)
	}
	for _, p := range o.plugins {
		if err := gdb.Use(p); err != nil {
			return nil, fmt.Errorf("db: use plugin %s: %w", p.Name(), err)
		}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	pool := cfg.pool()
	sqlDB.SetMaxIdleConns(pool.MaxIdle)
	sqlDB.SetMaxOpenConns(pool.MaxOpen)
	sqlDB.SetConnMaxLifetime(pool.MaxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.MaxIdleTime)

	c := &Client{gdb: gdb, sqlDB: sqlDB, driver: cfg.Driver, logger: lg}

	ctx, cancel := context.WithTimeout(context.Background(), o.pingTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping %s: %w", cfg.Driver, err)
	}

	lg.Debug().Str("driver", string(cfg.Driver)).Msg("database connected")
	return c, nil
}

func (c *Client) DB() *gorm.DB {
	return c.gdb
}

func (c *Client) Driver() Driver {
	return c.driver
}

func (c *Client) Ping(ctx context.Context) error {
	if c.sqlDB == nil {
		return ErrClosed
	}
	return c.sqlDB.PingContext(ctx)
}

// Stats 连接池统计
func (c *Client) Stats() sql.DBStats {
	if c.sqlDB == nil {
		return sql.DBStats{}
	}
	return c.sqlDB.Stats()
}

// Close 可重复调用
func (c *Client) Close() error {
	if c.sqlDB == nil {
		return nil
	}
	err := c.sqlDB.Close()
	c.sqlDB = nil
	return err
}

type gormWriter struct {
	logger *log.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.logger.Info().Msgf(format, args...)
}
