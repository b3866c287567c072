package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/passport/core/auth/audit"
)

func TestRemoveToken(t *testing.T) {
	for _, kind := range []string{"access", "refresh"} {
		t.Run(kind, func(t *testing.T) {
			cfg := testConfig(t)
			c := newMemCache()
			sink := &recordingSink{}
			pair, err := NewIssuer(cfg, c).GenerateTokens(context.Background(), 1)
			require.NoError(t, err)

			token := pair.AccessToken
			if kind == "refresh" {
				token = pair.RefreshToken
			}
			removed, err := NewRevoker(cfg, c, WithAuditSink(sink)).RemoveToken(context.Background(), token)
			require.NoError(t, err)
			assert.True(t, removed)
			assert.Equal(t, 0, c.len())
			assert.Len(t, c.callsOf("del"), 2)
			assert.Equal(t, []string{audit.EventSessionRevoked}, sink.types())

			p, err := NewLookup(cfg, c).GetUserPayloadByToken(context.Background(), pair.RefreshToken)
			require.NoError(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestRemoveTokenUnknown(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	sink := &recordingSink{}

	removed, err := NewRevoker(cfg, c, WithAuditSink(sink)).RemoveToken(context.Background(), "unknown")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, c.callsOf("del"))
	assert.Empty(t, sink.types())
}

func TestRemoveTokenTwice(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	pair, err := NewIssuer(cfg, c).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	revoker := NewRevoker(cfg, c)
	removed, err := revoker.RemoveToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = revoker.RemoveToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRemoveTokenPayloadWithoutTokens(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	c.put("opaque", `{"uid":1}`)

	removed, err := NewRevoker(cfg, c).RemoveToken(context.Background(), "opaque")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, c.has("opaque"))
	assert.Len(t, c.callsOf("del"), 1)
}

func TestRemoveTokenDeleteFailure(t *testing.T) {
	cfg := testConfig(t)
	c := newMemCache()
	pair, err := NewIssuer(cfg, c).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	c.delErr[pair.RefreshToken] = boom

	removed, err := NewRevoker(cfg, c).RemoveToken(context.Background(), pair.AccessToken)
	assert.False(t, removed)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.has(pair.AccessToken))
	assert.True(t, c.has(pair.RefreshToken))
}

func TestRemoveTokenLosesRace(t *testing.T) {
	cfg := testConfig(t)
	mem := newMemCache()
	pair, err := NewIssuer(cfg, mem).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	// 两次吊销都在任何删除之前读到会话
	c := newBarrierCache(mem, cfg.Key(pair.RefreshToken), 2)
	revoker := NewRevoker(cfg, c)
	results := make(chan bool, 2)
	for range 2 {
		go func() {
			removed, err := revoker.RemoveToken(context.Background(), pair.RefreshToken)
			assert.NoError(t, err)
			results <- removed
		}()
	}
	first, second := <-results, <-results
	assert.True(t, first != second)
	assert.Equal(t, 0, mem.len())
}

func TestRemoveTokenPlainCache(t *testing.T) {
	cfg := testConfig(t)
	mem := newMemCache()
	pair, err := NewIssuer(cfg, mem).GenerateTokens(context.Background(), 1)
	require.NoError(t, err)

	removed, err := NewRevoker(cfg, plainCache{mem}).RemoveToken(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, mem.len())
}

func TestRemovedBy(t *testing.T) {
	assert.True(t, removedBy([]string{"a", "r"}, []bool{false, true}, "r"))
	assert.False(t, removedBy([]string{"a", "r"}, []bool{true, false}, "r"))
	assert.True(t, removedBy([]string{"a", "r"}, []bool{false, true}, "x"))
	assert.False(t, removedBy([]string{"a", "r"}, []bool{false, false}, "x"))
}

func TestRevokeKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "r"}, revokeKeys(&Payload{AccessToken: "a", RefreshToken: "r"}, "a"))
	assert.Equal(t, []string{"x"}, revokeKeys(&Payload{}, "x"))
	assert.Equal(t, []string{"x", "r"}, revokeKeys(&Payload{RefreshToken: "r"}, "x"))
}
