package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/directory"
	"github.com/kochabx/passport/core/auth/jwt"
)

type call struct {
	op    string
	key   string
	value string
}

// memCache 记录调用并可注入错误
type memCache struct {
	mu    sync.Mutex
	data  map[string]string
	calls []call

	// failSet 非 nil 时决定 Set 是否失败
	failSet func(key, value string) error
	delErr  map[string]error
	getErr  error
}

func newMemCache() *memCache {
	return &memCache{
		data:   make(map[string]string),
		delErr: make(map[string]error),
	}
}

func (m *memCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "get", key: key})
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "set", key: key, value: value})
	if m.failSet != nil {
		if err := m.failSet(key, value); err != nil {
			return err
		}
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "del", key: key})
	if err := m.delErr[key]; err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// Take 与 Del 记为同一种调用
func (m *memCache) Take(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call{op: "del", key: key})
	if err := m.delErr[key]; err != nil {
		return false, err
	}
	_, ok := m.data[key]
	delete(m.data, key)
	return ok, nil
}

func (m *memCache) Scan(_ context.Context, prefix string, fn func(string) error) error {
	m.mu.Lock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	m.mu.Unlock()

	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

func (m *memCache) callsOf(op string) []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []call
	for _, c := range m.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memCache) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *memCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// barrierCache 前 n 次读取 key 的调用互相等待，保证它们都读到同一份数据
type barrierCache struct {
	*memCache
	key string
	n   int

	mu      sync.Mutex
	arrived int
	ready   chan struct{}
}

func newBarrierCache(m *memCache, key string, n int) *barrierCache {
	return &barrierCache{memCache: m, key: key, n: n, ready: make(chan struct{})}
}

func (b *barrierCache) Get(ctx context.Context, key string) (string, bool, error) {
	if key == b.key {
		b.mu.Lock()
		b.arrived++
		arrived := b.arrived
		if arrived == b.n {
			close(b.ready)
		}
		b.mu.Unlock()
		if arrived <= b.n {
			<-b.ready
		}
	}
	return b.memCache.Get(ctx, key)
}

// plainCache 不支持遍历
type plainCache struct{ m *memCache }

func (p plainCache) Get(ctx context.Context, key string) (string, bool, error) {
	return p.m.Get(ctx, key)
}

func (p plainCache) Set(ctx context.Context, key, value string) error {
	return p.m.Set(ctx, key, value)
}

func (p plainCache) Del(ctx context.Context, key string) error {
	return p.m.Del(ctx, key)
}

type failingDirectory struct{}

func (failingDirectory) FindByID(context.Context, int64) (*directory.User, error) {
	return nil, errors.New("db down")
}

func (failingDirectory) FindByUsername(context.Context, string) (*directory.User, error) {
	return nil, errors.New("db down")
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		AccessSecret:  "access-secret-0123456789",
		RefreshSecret: "refresh-secret-0123456789",
	}
	require.NoError(t, cfg.Init())
	return cfg
}

func adminDirectory(t *testing.T) *directory.Static {
	t.Helper()
	hash, err := directory.HashPassword("password")
	require.NoError(t, err)
	return directory.NewStatic(directory.User{ID: 1, Username: "admin", PasswordHash: hash})
}

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *recordingSink) Emit(_ context.Context, e audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

// pastSigner 签发时间提前 d 的签名器
func pastSigner(cfg *Config, d time.Duration) Option {
	return WithSigner(jwt.NewHMACSigner(
		jwt.WithMethod(cfg.SigningMethod),
		jwt.WithClock(func() time.Time { return time.Now().Add(-d) }),
	))
}
