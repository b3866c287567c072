package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kochabx/passport/core/auth/session/cache"
)

// Lookup 按令牌读取会话载荷
type Lookup struct {
	cfg   *Config
	cache cache.Cache
	*options
}

func NewLookup(cfg *Config, c cache.Cache, opts ...Option) *Lookup {
	return &Lookup{cfg: cfg, cache: c, options: newOptions(cfg, opts)}
}

// GetUserPayloadByToken 不存在时返回 (nil, nil)；只检查缓存，不校验签名
func (l *Lookup) GetUserPayloadByToken(ctx context.Context, token string) (*Payload, error) {
	if token == "" {
		return nil, nil
	}

	start := time.Now()
	value, ok, err := l.cache.Get(ctx, l.cfg.Key(token))
	l.metrics.observeCache("get", start)
	if err != nil {
		l.metrics.observeLookup("error")
		return nil, fmt.Errorf("session: read payload: %w", err)
	}
	if !ok {
		l.metrics.observeLookup("miss")
		return nil, nil
	}

	p, err := DecodePayload(value)
	if err != nil {
		l.metrics.observeLookup("malformed")
		l.logger.Warn().Err(err).Msg("malformed session payload")
		return nil, err
	}
	l.metrics.observeLookup("hit")
	return p, nil
}
