package session

import (
	"strings"
)

// TokenPair 登录返回的令牌对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`

	// 访问令牌有效期，单位秒
	ExpiresIn int64 `json:"expiresIn"`
}

// ExtractToken 从 "<scheme> <token>" 中取出令牌，scheme 不区分大小写
func ExtractToken(header, scheme string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	got, token, found := strings.Cut(header, " ")
	if !found {
		if strings.EqualFold(header, scheme) {
			return "", ErrMissingToken
		}
		return "", ErrInvalidScheme
	}
	if !strings.EqualFold(got, scheme) {
		return "", ErrInvalidScheme
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
