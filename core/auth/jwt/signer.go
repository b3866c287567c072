package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kochabx/passport/core/util/id"
)

// Signer 签名原语
type Signer interface {
	// Sign 用 secret 签发有效期为 ttl 的令牌
	Sign(claims *Claims, secret []byte, ttl time.Duration) (string, error)

	// Verify 校验签名与有效期，失败时返回 ErrInvalidSignature 或 ErrExpired
	Verify(token string, secret []byte) (*Claims, error)
}

// HMACSigner 基于 HMAC-SHA 的 Signer
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	issuer string
	now    func() time.Time
	leeway time.Duration
}

var _ Signer = (*HMACSigner)(nil)

// Option HMACSigner 选项
type Option func(*HMACSigner)

// WithMethod HS256 / HS384 / HS512，默认 HS256
func WithMethod(name string) Option {
	return func(s *HMACSigner) {
		if m, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC); ok {
			s.method = m
		}
	}
}

// WithIssuer 写入 iss
func WithIssuer(issuer string) Option {
	return func(s *HMACSigner) {
		s.issuer = issuer
	}
}

// WithClock 替换时间源
func WithClock(now func() time.Time) Option {
	return func(s *HMACSigner) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLeeway 校验 exp 时允许的时钟偏差
func WithLeeway(d time.Duration) Option {
	return func(s *HMACSigner) {
		s.leeway = d
	}
}

// NewHMACSigner 创建 HMACSigner
func NewHMACSigner(opts ...Option) *HMACSigner {
	s := &HMACSigner{
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Method 签名算法名
func (s *HMACSigner) Method() string {
	return s.method.Alg()
}

// Sign 每次签发生成新的 jti，同一秒内为同一用户签发的令牌也互不相同
func (s *HMACSigner) Sign(claims *Claims, secret []byte, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", ErrNilClaims
	}
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	c := claims.clone()
	now := s.now()
	c.ID = id.Generate()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if c.Issuer == "" {
		c.Issuer = s.issuer
	}

	return jwt.NewWithClaims(s.method, c).SignedString(secret)
}

// Verify 先校验签名再校验有效期，签名错误的过期令牌返回 ErrInvalidSignature
func (s *HMACSigner) Verify(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.Permissions == nil {
		claims.Permissions = []string{}
	}
	return claims, nil
}

// IssuedAt 不校验签名读取 iat，令牌无法解析时 ok 为 false
func IssuedAt(token string) (t time.Time, ok bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.IssuedAt == nil {
		return time.Time{}, false
	}
	return claims.IssuedAt.Time, true
}
