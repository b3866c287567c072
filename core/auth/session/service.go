package session

import (
	"context"
	"net/http"
	"time"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/directory"
	"github.com/kochabx/passport/core/auth/session/cache"
	"github.com/kochabx/passport/errors"
)

// Service 组合签发、校验、查询、吊销与身份查询
type Service struct {
	*Issuer
	*Verifier
	*Lookup
	*Revoker
	*IdentityResolver

	cfg *Config
	dir directory.Directory
	*options
}

// New 初始化配置并组装会话服务
func New(cfg *Config, c cache.Cache, dir directory.Directory, opts ...Option) (*Service, error) {
	if err := cfg.Init(); err != nil {
		return nil, errors.Wrap(err, http.StatusBadRequest, "invalid session config")
	}

	o := newOptions(cfg, opts)
	lookup := &Lookup{cfg: cfg, cache: c, options: o}
	return &Service{
		Issuer:           &Issuer{cfg: cfg, cache: c, options: o},
		Verifier:         &Verifier{cfg: cfg, options: o},
		Lookup:           lookup,
		Revoker:          &Revoker{cfg: cfg, cache: c, lookup: lookup, options: o},
		IdentityResolver: NewIdentityResolver(dir),
		cfg:              cfg,
		dir:              dir,
		options:          o,
	}, nil
}

// Config 当前配置
func (s *Service) Config() *Config {
	return s.cfg
}

// Login 校验用户名密码并签发令牌对
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	u, err := s.dir.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "find user failed")
	}
	if u == nil || !directory.CheckPassword(u.PasswordHash, password) {
		s.audit.Emit(ctx, audit.Event{
			Type:     audit.EventLoginFailed,
			Time:     time.Now(),
			Error:    ErrInvalidCredentials.Error(),
			Metadata: map[string]string{"username": username},
		})
		return nil, errors.Wrap(ErrInvalidCredentials, http.StatusUnauthorized, "invalid username or password")
	}

	pair, err := s.GenerateTokens(ctx, u.ID)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "issue tokens failed")
	}
	return pair, nil
}

// Authenticate 从 "<scheme> <token>" 中取出访问令牌，要求签名有效且会话仍在缓存中
func (s *Service) Authenticate(ctx context.Context, header string) (*Payload, error) {
	token, err := ExtractToken(header, s.cfg.Scheme)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusUnauthorized, "invalid authorization header")
	}

	v := s.VerifyAccessToken(token)
	if !v.OK() {
		return nil, errors.Wrap(v.Err(), http.StatusUnauthorized, "invalid access token")
	}

	p, err := s.GetUserPayloadByToken(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "session lookup failed")
	}
	if p == nil {
		return nil, errors.Wrap(ErrSessionNotFound, http.StatusUnauthorized, "session not found")
	}
	if p.UID != v.Claims.UID {
		return nil, errors.Wrap(ErrTokenMismatch, http.StatusUnauthorized, "session does not match token")
	}
	return p, nil
}

// Me 当前会话用户的公开信息
func (s *Service) Me(ctx context.Context, header string) (*UserInfo, error) {
	p, err := s.Authenticate(ctx, header)
	if err != nil {
		return nil, err
	}

	info, err := s.GetUserMe(ctx, p.UID)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "find user failed")
	}
	if info == nil {
		return nil, errors.Wrap(ErrUserNotFound, http.StatusNotFound, "user not found")
	}
	return info, nil
}

// Refresh 用刷新令牌换取新的令牌对，旧会话先被删除，每个刷新令牌只换取一次
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	v := s.VerifyRefreshToken(refreshToken)
	if !v.OK() {
		return nil, errors.Wrap(v.Err(), http.StatusUnauthorized, "invalid refresh token")
	}

	p, err := s.GetUserPayloadByToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "session lookup failed")
	}
	if p == nil {
		return nil, errors.Wrap(ErrSessionNotFound, http.StatusUnauthorized, "session not found")
	}
	if p.RefreshToken != refreshToken || p.UID != v.Claims.UID {
		return nil, errors.Wrap(ErrTokenMismatch, http.StatusUnauthorized, "session does not match token")
	}

	// 刷新令牌只能使用一次，并发刷新时未抢到删除的一方不签发
	removed, err := s.RemoveToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "revoke session failed")
	}
	if !removed {
		return nil, errors.Wrap(ErrSessionNotFound, http.StatusUnauthorized, "session not found")
	}

	pair, err := s.GenerateTokens(ctx, p.UID)
	if err != nil {
		return nil, errors.Wrap(err, http.StatusInternalServerError, "issue tokens failed")
	}
	s.audit.Emit(ctx, audit.Event{Type: audit.EventSessionRefreshed, UID: p.UID, Time: time.Now(), Success: true})
	return pair, nil
}

// Logout 删除请求头中令牌对应的会话，会话不存在时返回 false
func (s *Service) Logout(ctx context.Context, header string) (bool, error) {
	token, err := ExtractToken(header, s.cfg.Scheme)
	if err != nil {
		return false, errors.Wrap(err, http.StatusUnauthorized, "invalid authorization header")
	}

	removed, err := s.RemoveToken(ctx, token)
	if err != nil {
		return false, errors.Wrap(err, http.StatusInternalServerError, "revoke session failed")
	}
	return removed, nil
}

// CheckUsername 用户名是否已存在
func (s *Service) CheckUsername(ctx context.Context, username string) (bool, error) {
	u, err := s.dir.FindByUsername(ctx, username)
	if err != nil {
		return false, errors.Wrap(err, http.StatusInternalServerError, "find user failed")
	}
	return u != nil, nil
}
