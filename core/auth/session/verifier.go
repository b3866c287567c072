package session

import (
	"errors"

	"github.com/kochabx/passport/core/auth/jwt"
)

// Failure 令牌校验失败原因
type Failure int

const (
	FailureNone Failure = iota
	FailureInvalidSignature
	FailureExpired
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "ok"
	case FailureInvalidSignature:
		return "invalid_signature"
	case FailureExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Verification 校验结果，Failure 为 FailureNone 时 Claims 非 nil
type Verification struct {
	Claims  *jwt.Claims
	Failure Failure
}

func (v Verification) OK() bool {
	return v.Failure == FailureNone && v.Claims != nil
}

// Err 失败时返回 ErrInvalidSignature 或 ErrExpired
func (v Verification) Err() error {
	switch {
	case v.OK():
		return nil
	case v.Failure == FailureExpired:
		return ErrExpired
	default:
		return ErrInvalidSignature
	}
}

// Verifier 只校验签名与有效期，不读取缓存，已吊销但未过期的令牌仍然通过
type Verifier struct {
	cfg *Config
	*options
}

func NewVerifier(cfg *Config, opts ...Option) *Verifier {
	return &Verifier{cfg: cfg, options: newOptions(cfg, opts)}
}

func (v *Verifier) VerifyAccessToken(token string) Verification {
	return v.verify("access", token, v.cfg.AccessSecret)
}

func (v *Verifier) VerifyRefreshToken(token string) Verification {
	return v.verify("refresh", token, v.cfg.RefreshSecret)
}

func (v *Verifier) verify(kind, token, secret string) Verification {
	var res Verification
	claims, err := v.signer.Verify(token, []byte(secret))
	switch {
	case err == nil:
		res.Claims = claims
	case errors.Is(err, jwt.ErrExpired):
		res.Failure = FailureExpired
	default:
		res.Failure = FailureInvalidSignature
	}

	v.metrics.observeVerification(kind, res)
	return res
}
