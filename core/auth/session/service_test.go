package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/directory"
	"github.com/kochabx/passport/errors"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *memCache) {
	t.Helper()
	c := newMemCache()
	s, err := New(testConfig(t), c, adminDirectory(t), opts...)
	require.NoError(t, err)
	return s, c
}

func bearer(token string) string {
	return "Bearer " + token
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(&Config{}, newMemCache(), directory.NewStatic())
	require.Error(t, err)
	assert.Equal(t, 400, errors.Code(err))
}

func TestLogin(t *testing.T) {
	s, c := newTestService(t)

	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	assert.True(t, c.has(pair.AccessToken))
	assert.True(t, c.has(pair.RefreshToken))

	p, err := s.GetUserPayloadByToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.UID)
}

func TestLoginLegacyHash(t *testing.T) {
	sum := sha256.Sum256([]byte("password"))
	dir := directory.NewStatic(directory.User{ID: 9, Username: "legacy", PasswordHash: hex.EncodeToString(sum[:])})
	s, err := New(testConfig(t), newMemCache(), dir)
	require.NoError(t, err)

	pair, err := s.Login(context.Background(), "legacy", "password")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	sink := &recordingSink{}
	s, c := newTestService(t, WithAuditSink(sink))

	for _, tc := range [][2]string{{"admin", "wrong"}, {"nobody", "password"}} {
		_, err := s.Login(context.Background(), tc[0], tc[1])
		require.Error(t, err)
		assert.Equal(t, 401, errors.Code(err))
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Empty(t, c.callsOf("set"))
	assert.Equal(t, []string{audit.EventLoginFailed, audit.EventLoginFailed}, sink.types())
	assert.Equal(t, "nobody", sink.events[1].Metadata["username"])
}

func TestLoginDirectoryError(t *testing.T) {
	s, err := New(testConfig(t), newMemCache(), failingDirectory{})
	require.NoError(t, err)

	_, err = s.Login(context.Background(), "admin", "password")
	assert.Equal(t, 500, errors.Code(err))
}

func TestAuthenticate(t *testing.T) {
	s, _ := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	p, err := s.Authenticate(context.Background(), bearer(pair.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.UID)
}

func TestAuthenticateFailures(t *testing.T) {
	s, c := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", ErrMissingToken},
		{"wrong scheme", "Basic " + pair.AccessToken, ErrInvalidScheme},
		{"refresh token", bearer(pair.RefreshToken), ErrInvalidSignature},
		{"garbage", bearer("garbage"), ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Authenticate(context.Background(), tt.header)
			assert.Equal(t, 401, errors.Code(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}

	t.Run("revoked", func(t *testing.T) {
		_, err := s.RemoveToken(context.Background(), pair.AccessToken)
		require.NoError(t, err)

		_, err = s.Authenticate(context.Background(), bearer(pair.AccessToken))
		assert.Equal(t, 401, errors.Code(err))
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("uid mismatch", func(t *testing.T) {
		pair, err := s.GenerateTokens(context.Background(), 1)
		require.NoError(t, err)
		c.put(pair.AccessToken, `{"uid":2}`)

		_, err = s.Authenticate(context.Background(), bearer(pair.AccessToken))
		assert.ErrorIs(t, err, ErrTokenMismatch)
	})

	t.Run("cache error", func(t *testing.T) {
		pair, err := s.GenerateTokens(context.Background(), 1)
		require.NoError(t, err)
		c.getErr = errors.ServiceUnavailable("unavailable")
		defer func() { c.getErr = nil }()

		_, err = s.Authenticate(context.Background(), bearer(pair.AccessToken))
		assert.Equal(t, 500, errors.Code(err))
	})
}

func TestAuthenticateExpired(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	pair, err := NewIssuer(cfg, c, pastSigner(cfg, 2*time.Hour)).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	s, err := New(cfg, c, adminDirectory(t))
	require.NoError(t, err)
	_, err = s.Authenticate(context.Background(), bearer(pair.AccessToken))
	assert.Equal(t, 401, errors.Code(err))
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMe(t *testing.T) {
	s, _ := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	info, err := s.Me(context.Background(), bearer(pair.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, &UserInfo{Username: "admin"}, info)
}

func TestMeUserGone(t *testing.T) {
	s, _ := newTestService(t)
	pair, err := s.GenerateTokens(context.Background(), 42)
	require.NoError(t, err)

	_, err = s.Me(context.Background(), bearer(pair.AccessToken))
	assert.Equal(t, 404, errors.Code(err))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefresh(t *testing.T) {
	sink := &recordingSink{}
	s, c := newTestService(t, WithAuditSink(sink))
	old, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	pair, err := s.Refresh(context.Background(), old.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, old.AccessToken, pair.AccessToken)
	assert.NotEqual(t, old.RefreshToken, pair.RefreshToken)

	assert.False(t, c.has(old.AccessToken))
	assert.False(t, c.has(old.RefreshToken))
	assert.True(t, c.has(pair.AccessToken))
	assert.True(t, c.has(pair.RefreshToken))
	assert.Equal(t, []string{
		audit.EventSessionIssued,
		audit.EventSessionRevoked,
		audit.EventSessionIssued,
		audit.EventSessionRefreshed,
	}, sink.types())

	// 旧刷新令牌不能再次使用
	_, err = s.Refresh(context.Background(), old.RefreshToken)
	assert.Equal(t, 401, errors.Code(err))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRefreshConcurrentSingleUse(t *testing.T) {
	cfg := testConfig(t)
	mem := newMemCache()
	old, err := NewIssuer(cfg, mem).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	c := newBarrierCache(mem, cfg.Key(old.RefreshToken), 2)
	s, err := New(cfg, c, adminDirectory(t))
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		errs = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = s.Refresh(context.Background(), old.RefreshToken)
		}()
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, 401, errors.Code(err))
		assert.ErrorIs(t, err, ErrSessionNotFound)
		rejected++
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, 2, mem.len())
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s, c := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	_, err = s.Refresh(context.Background(), pair.AccessToken)
	assert.Equal(t, 401, errors.Code(err))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.True(t, c.has(pair.RefreshToken))
}

func TestRefreshPayloadMismatch(t *testing.T) {
	s, c := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)
	c.put(pair.RefreshToken, `{"uid":1,"accessToken":"a","refreshToken":"other"}`)

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestLogout(t *testing.T) {
	s, c := newTestService(t)
	pair, err := s.Login(context.Background(), "admin", "password")
	require.NoError(t, err)

	removed, err := s.Logout(context.Background(), bearer(pair.AccessToken))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, c.len())

	removed, err = s.Logout(context.Background(), bearer(pair.AccessToken))
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Logout(context.Background(), "")
	assert.Equal(t, 401, errors.Code(err))
}

func TestCheckUsername(t *testing.T) {
	s, _ := newTestService(t)

	exists, err := s.CheckUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.CheckUsername(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, exists)
}
