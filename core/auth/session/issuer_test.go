package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/passport/core/auth/audit"
)

func TestGenerateTokens(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	sink := &recordingSink{}
	issuer := NewIssuer(cfg, c, WithAuditSink(sink))

	pair, err := issuer.GenerateTokens(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	sets := c.callsOf("set")
	require.Len(t, sets, 2)
	assert.ElementsMatch(t, []string{pair.AccessToken, pair.RefreshToken}, []string{sets[0].key, sets[1].key})
	assert.Equal(t, sets[0].value, sets[1].value)

	p, err := DecodePayload(sets[0].value)
	require.NoError(t, err)
	assert.Equal(t, &Payload{
		UID:          1,
		Permissions:  []string{},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, p)

	assert.Equal(t, []string{audit.EventSessionIssued}, sink.types())
	assert.True(t, sink.events[0].Success)
}

func TestGenerateTokensKeyPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.KeyPrefix = "passport:"
	c := newMemCache()

	pair, err := NewIssuer(cfg, c).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, c.has("passport:"+pair.AccessToken))
	assert.True(t, c.has("passport:"+pair.RefreshToken))
}

func TestGenerateTokensDistinctPerCall(t *testing.T) {
	cfg := testConfig(t)
	issuer := NewIssuer(cfg, newMemCache())

	a, err := issuer.GenerateTokens(context.Background(), 1)
	require.NoError(t, err)
	b, err := issuer.GenerateTokens(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.AccessToken, b.AccessToken)
	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
}

func TestGenerateTokensInvalidUID(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	issuer := NewIssuer(cfg, c)

	for _, uid := range []int64{0, -1} {
		_, err := issuer.GenerateTokens(context.Background(), uid)
		assert.ErrorIs(t, err, ErrInvalidUID)
	}
	assert.Empty(t, c.callsOf("set"))
}

func TestGenerateTokensPartialWrite(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	sink := &recordingSink{}
	issuer := NewIssuer(cfg, c, WithAuditSink(sink))

	boom := errors.New("boom")
	c.failSet = func(key, value string) error {
		p, err := DecodePayload(value)
		if err == nil && key == cfg.Key(p.RefreshToken) {
			return boom
		}
		return nil
	}

	_, err := issuer.GenerateTokens(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "refresh key")

	// 已写入的访问令牌 key 不回滚
	assert.Len(t, c.callsOf("set"), 2)
	assert.Equal(t, 1, c.len())
	assert.Empty(t, c.callsOf("del"))

	require.Len(t, sink.events, 1)
	assert.False(t, sink.events[0].Success)
}

func TestGenerateTokensBothWritesFail(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	c.failSet = func(string, string) error { return errors.New("down") }

	_, err := NewIssuer(cfg, c).GenerateTokens(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access key")
	assert.Contains(t, err.Error(), "refresh key")
}

func TestGenerateTokensExpiresIn(t *testing.T) {
	cfg := testConfig(t)
	cfg.AccessTTL = 15 * time.Minute

	pair, err := NewIssuer(cfg, newMemCache()).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), pair.ExpiresIn)
}
