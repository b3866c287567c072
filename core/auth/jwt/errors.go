package jwt

import "errors"

var (
	// ErrInvalidSignature 令牌格式错误、签名不匹配或算法不符
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	// ErrExpired 签名有效但已过期
	ErrExpired = errors.New("jwt: token expired")

	ErrEmptySecret = errors.New("jwt: secret cannot be empty")
	ErrInvalidTTL  = errors.New("jwt: ttl must be positive")
	ErrNilClaims   = errors.New("jwt: claims cannot be nil")
)
