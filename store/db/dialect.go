package db

import (
	"net"
	"net/url"
	"strconv"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type dialect interface {
	DSN() (string, error)
	open(dsn string) gorm.Dialector
}

// MySQLConfig MySQL 连接参数
type MySQLConfig struct {
	Host      string        `json:"host" default:"localhost"`
	Port      int           `json:"port" default:"3306"`
	User      string        `json:"user" default:"root"`
	Password  string        `json:"password"`
	Database  string        `json:"database" default:"passport"`
	Charset   string        `json:"charset" default:"utf8mb4"`
	Collation string        `json:"collation" default:"utf8mb4_unicode_ci"`
	Loc       string        `json:"loc" default:"Local"`
	Timeout   time.Duration `json:"timeout" default:"10s"`
}

func (c *MySQLConfig) DSN() (string, error) {
	loc, err := time.LoadLocation(c.Loc)
	if err != nil {
		return "", err
	}
	mc := gomysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.Collation = c.Collation
	mc.ParseTime = true
	mc.Loc = loc
	mc.Timeout = c.Timeout
	mc.Params = map[string]string{"charset": c.Charset}
	return mc.FormatDSN(), nil
}

func (c *MySQLConfig) open(dsn string) gorm.Dialector {
	return mysql.Open(dsn)
}

// PostgresConfig PostgreSQL 连接参数
type PostgresConfig struct {
	Host           string `json:"host" default:"localhost"`
	Port           int    `json:"port" default:"5432"`
	User           string `json:"user" default:"postgres"`
	Password       string `json:"password"`
	Database       string `json:"database" default:"passport"`
	SSLMode        string `json:"sslmode" default:"disable"`
	TimeZone       string `json:"timezone" default:"UTC"`
	ConnectTimeout int    `json:"connectTimeout" default:"10"`
}

// DSN postgres:// URL 形式
func (c *PostgresConfig) DSN() (string, error) {
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	q.Set("TimeZone", c.TimeZone)
	q.Set("connect_timeout", strconv.Itoa(c.ConnectTimeout))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Database,
		RawQuery: q.Encode(),
	}
	return u.String(), nil
}

func (c *PostgresConfig) open(dsn string) gorm.Dialector {
	return postgres.Open(dsn)
}

// SQLiteConfig Path 为 ":memory:" 时使用内存库
type SQLiteConfig struct {
	Path        string        `json:"path" default:"./passport.db"`
	JournalMode string        `json:"journalMode" default:"WAL"`
	BusyTimeout time.Duration `json:"busyTimeout" default:"5s"`
	ForeignKeys bool          `json:"foreignKeys"`
}

func (c *SQLiteConfig) memory() bool {
	return c.Path == ":memory:"
}

func (c *SQLiteConfig) DSN() (string, error) {
	q := url.Values{}
	q.Set("_busy_timeout", strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10))
	q.Set("_foreign_keys", strconv.FormatBool(c.ForeignKeys))
	if !c.memory() {
		q.Set("_journal_mode", c.JournalMode)
	}
	return "file:" + c.Path + "?" + q.Encode(), nil
}

func (c *SQLiteConfig) open(dsn string) gorm.Dialector {
	return sqlite.Open(dsn)
}
