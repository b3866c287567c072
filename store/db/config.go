package db

import (
	"time"

	"gorm.io/gorm/logger"
)

// Driver 数据库驱动
type Driver string

const (
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config 数据库配置，只有 Driver 对应的子配置生效
type Config struct {
	Driver        Driver        `json:"driver" default:"sqlite" validate:"oneof=mysql postgres sqlite"`
	LogLevel      string        `json:"logLevel" default:"silent" validate:"oneof=silent error warn info"`
	SlowThreshold time.Duration `json:"slowThreshold" default:"200ms"`
	Pool          PoolConfig    `json:"pool"`

	MySQL    MySQLConfig    `json:"mysql"`
	Postgres PostgresConfig `json:"postgres"`
	SQLite   SQLiteConfig   `json:"sqlite"`
}

// PoolConfig 连接池
type PoolConfig struct {
	MaxIdle     int           `json:"maxIdle" default:"10"`
	MaxOpen     int           `json:"maxOpen" default:"100"`
	MaxLifetime time.Duration `json:"maxLifetime" default:"1h"`
	MaxIdleTime time.Duration `json:"maxIdleTime" default:"10m"`
}

var gormLevels = map[string]logger.LogLevel{
	"silent": logger.Silent,
	"error":  logger.Error,
	"warn":   logger.Warn,
	"info":   logger.Info,
}

func (c *Config) gormLevel() logger.LogLevel {
	if lv, ok := gormLevels[c.LogLevel]; ok {
		return lv
	}
	return logger.Silent
}

// dialect 当前驱动
func (c *Config) dialect() (dialect, error) {
	switch c.Driver {
	case DriverMySQL:
		return &c.MySQL, nil
	case DriverPostgres:
		return &c.Postgres, nil
	case DriverSQLite:
		return &c.SQLite, nil
	default:
		return nil, ErrUnsupportedDriver
	}
}

// pool SQLite 只允许单连接，内存库的连接不能过期
func (c *Config) pool() PoolConfig {
	p := c.Pool
	if c.Driver == DriverSQLite {
		p.MaxIdle, p.MaxOpen = 1, 1
		if c.SQLite.memory() {
			p.MaxLifetime, p.MaxIdleTime = 0, 0
		}
	}
	return p
}
