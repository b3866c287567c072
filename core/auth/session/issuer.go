package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/jwt"
	"github.com/kochabx/passport/core/auth/session/cache"
)

// Issuer 签发令牌对并以两个 key 写入同一份会话载荷
type Issuer struct {
	cfg   *Config
	cache cache.Cache
	*options
}

// NewIssuer cfg 须已调用 Init
func NewIssuer(cfg *Config, c cache.Cache, opts ...Option) *Issuer {
	return &Issuer{cfg: cfg, cache: c, options: newOptions(cfg, opts)}
}

// GenerateTokens 为 uid 签发访问令牌和刷新令牌。
// 两次写入并发执行且互不取消；任一失败时返回错误，已写入的 key 不回滚
func (i *Issuer) GenerateTokens(ctx context.Context, uid int64) (*TokenPair, error) {
	if uid <= 0 {
		return nil, ErrInvalidUID
	}

	claims := jwt.NewClaims(uid)
	access, err := i.signer.Sign(claims, []byte(i.cfg.AccessSecret), i.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("session: sign access token: %w", err)
	}
	refresh, err := i.signer.Sign(claims, []byte(i.cfg.RefreshSecret), i.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("session: sign refresh token: %w", err)
	}
	if access == refresh {
		return nil, ErrTokenCollision
	}

	value, err := EncodePayload(&Payload{
		UID:          uid,
		Permissions:  claims.Permissions,
		AccessToken:  access,
		RefreshToken: refresh,
	})
	if err != nil {
		return nil, err
	}

	var accessErr, refreshErr error
	var g errgroup.Group
	g.Go(func() error {
		accessErr = i.set(ctx, access, value)
		if accessErr != nil {
			accessErr = fmt.Errorf("session: write access key: %w", accessErr)
		}
		return nil
	})
	g.Go(func() error {
		refreshErr = i.set(ctx, refresh, value)
		if refreshErr != nil {
			refreshErr = fmt.Errorf("session: write refresh key: %w", refreshErr)
		}
		return nil
	})
	_ = g.Wait()

	if err := errors.Join(accessErr, refreshErr); err != nil {
		i.logger.Error().Err(err).Int64("uid", uid).Msg("session write incomplete")
		i.audit.Emit(ctx, audit.Event{Type: audit.EventSessionIssued, UID: uid, Time: time.Now(), Error: err.Error()})
		return nil, err
	}

	i.metrics.incIssued()
	i.audit.Emit(ctx, audit.Event{Type: audit.EventSessionIssued, UID: uid, Time: time.Now(), Success: true})
	i.logger.Debug().Int64("uid", uid).Msg("session issued")

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    i.cfg.Scheme,
		ExpiresIn:    int64(i.cfg.AccessTTL / time.Second),
	}, nil
}

func (i *Issuer) set(ctx context.Context, token, value string) error {
	defer i.metrics.observeCache("set", time.Now())
	return i.cache.Set(ctx, i.cfg.Key(token), value)
}
