package db

import (
	"context"
	"net/url"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/kochabx/passport/core/tag"
)

func memoryConfig() Config {
	return Config{Driver: DriverSQLite, SQLite: SQLiteConfig{Path: ":memory:"}}
}

func TestSQLiteMemoryClient(t *testing.T) {
	client, err := New(memoryConfig())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, DriverSQLite, client.Driver())
	assert.Equal(t, 1, client.Stats().MaxOpenConnections)

	type item struct {
		ID   int64
		Name string
	}
	require.NoError(t, client.DB().AutoMigrate(&item{}))
	require.NoError(t, client.DB().Create(&item{Name: "a"}).Error)

	var got item
	require.NoError(t, client.DB().First(&got).Error)
	assert.Equal(t, "a", got.Name)
}

func TestNewUnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestPingAfterClose(t *testing.T) {
	client, err := New(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Ping(context.Background()), ErrClosed)
	assert.NoError(t, client.Close())
}

func TestMySQLDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Password: "secret"}
	require.NoError(t, tag.ApplyDefaults(&c))
	dsn, err := c.DSN()
	require.NoError(t, err)

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "secret", parsed.Passwd)
	assert.Equal(t, "db:3306", parsed.Addr)
	assert.Equal(t, "passport", parsed.DBName)
	assert.Equal(t, "utf8mb4_unicode_ci", parsed.Collation)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, 10*time.Second, parsed.Timeout)
	assert.Contains(t, dsn, "charset=utf8mb4")

	c.Loc = "Nowhere/Invalid"
	_, err = c.DSN()
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Password: "p@ss"}
	require.NoError(t, tag.ApplyDefaults(&c))
	dsn, err := c.DSN()
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/passport", u.Path)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "UTC", u.Query().Get("TimeZone"))
	assert.Equal(t, "10", u.Query().Get("connect_timeout"))
}

func TestSQLiteDSN(t *testing.T) {
	c := SQLiteConfig{}
	require.NoError(t, tag.ApplyDefaults(&c))
	dsn, err := c.DSN()
	require.NoError(t, err)
	assert.Equal(t, "file:./passport.db?_busy_timeout=5000&_foreign_keys=false&_journal_mode=WAL", dsn)

	c.Path = ":memory:"
	dsn, err = c.DSN()
	require.NoError(t, err)
	assert.NotContains(t, dsn, "_journal_mode")
}

func TestPoolForSQLite(t *testing.T) {
	c := memoryConfig()
	require.NoError(t, tag.ApplyDefaults(&c))
	p := c.pool()
	assert.Equal(t, 1, p.MaxOpen)
	assert.Zero(t, p.MaxLifetime)

	c.Driver = DriverMySQL
	assert.Equal(t, 100, c.pool().MaxOpen)
}

func TestGormLevel(t *testing.T) {
	c := Config{LogLevel: "warn"}
	assert.Equal(t, logger.Warn, c.gormLevel())
	c.LogLevel = "bogus"
	assert.Equal(t, logger.Silent, c.gormLevel())
}
