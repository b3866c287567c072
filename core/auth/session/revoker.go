package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/session/cache"
)

// Revoker 删除会话的两个 key
type Revoker struct {
	cfg    *Config
	cache  cache.Cache
	lookup *Lookup
	*options
}

func NewRevoker(cfg *Config, c cache.Cache, opts ...Option) *Revoker {
	o := newOptions(cfg, opts)
	return &Revoker{
		cfg:     cfg,
		cache:   c,
		lookup:  &Lookup{cfg: cfg, cache: c, options: o},
		options: o,
	}
}

// RemoveToken 通过任一令牌删除整个会话。会话不存在时返回 (false, nil)。
// 两次删除并发执行，不保证原子性。缓存实现 cache.Taker 时，
// 并发吊销同一会话只有实际删除了所给令牌 key 的调用返回 true
func (r *Revoker) RemoveToken(ctx context.Context, token string) (bool, error) {
	p, err := r.lookup.GetUserPayloadByToken(ctx, token)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	keys := revokeKeys(p, token)
	taken := make([]bool, len(keys))
	errs := make([]error, len(keys))
	var g errgroup.Group
	for i, key := range keys {
		g.Go(func() error {
			start := time.Now()
			ok, err := r.del(ctx, r.cfg.Key(key))
			if err != nil {
				errs[i] = fmt.Errorf("session: delete key: %w", err)
			}
			taken[i] = ok
			r.metrics.observeCache("del", start)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		r.logger.Error().Err(err).Int64("uid", p.UID).Msg("session delete incomplete")
		r.audit.Emit(ctx, audit.Event{Type: audit.EventSessionRevoked, UID: p.UID, Time: time.Now(), Error: err.Error()})
		return false, err
	}
	if !removedBy(keys, taken, token) {
		r.logger.Debug().Int64("uid", p.UID).Msg("session already revoked by another caller")
		return false, nil
	}

	r.metrics.incRevoked()
	r.audit.Emit(ctx, audit.Event{Type: audit.EventSessionRevoked, UID: p.UID, Time: time.Now(), Success: true})
	r.logger.Debug().Int64("uid", p.UID).Msg("session revoked")
	return true, nil
}

// del 不支持 Take 的缓存无法区分，视为已删除
func (r *Revoker) del(ctx context.Context, key string) (bool, error) {
	if t, ok := r.cache.(cache.Taker); ok {
		return t.Take(ctx, key)
	}
	return true, r.cache.Del(ctx, key)
}

// removedBy 以所给令牌的 key 为准；该 key 不在删除列表中时任一 key 被删除即可
func removedBy(keys []string, taken []bool, token string) bool {
	removed := false
	for i, k := range keys {
		if k == token {
			return taken[i]
		}
		removed = removed || taken[i]
	}
	return removed
}

// revokeKeys 载荷中缺失的令牌用调用方提供的令牌代替，相同的 key 只删除一次
func revokeKeys(p *Payload, presented string) []string {
	access, refresh := p.AccessToken, p.RefreshToken
	if access == "" {
		access = presented
	}
	if refresh == "" {
		refresh = presented
	}
	if access == refresh {
		return []string{access}
	}
	return []string{access, refresh}
}
