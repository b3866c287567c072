package session

import (
	"errors"

	"github.com/kochabx/passport/core/auth/jwt"
)

var (
	// ErrInvalidSignature 与 jwt.ErrInvalidSignature 相同
	ErrInvalidSignature = jwt.ErrInvalidSignature
	// ErrExpired 与 jwt.ErrExpired 相同
	ErrExpired = jwt.ErrExpired

	ErrMalformedPayload   = errors.New("session: malformed payload")
	ErrInvalidUID         = errors.New("session: uid must be positive")
	ErrTokenCollision     = errors.New("session: access and refresh tokens collide")
	ErrMissingToken       = errors.New("session: missing token")
	ErrInvalidScheme      = errors.New("session: invalid authorization scheme")
	ErrInvalidCredentials = errors.New("session: invalid credentials")
	ErrSessionNotFound    = errors.New("session: session not found")
	ErrUserNotFound       = errors.New("session: user not found")
	ErrTokenMismatch      = errors.New("session: token does not belong to session")
	ErrScanUnsupported    = errors.New("session: cache does not support scanning")
)
