package session

import (
	"time"

	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/core/validator"
)

// Config 会话配置
type Config struct {
	// 访问令牌与刷新令牌使用不同的密钥
	AccessSecret  string `json:"accessSecret" validate:"required,min=16"`
	RefreshSecret string `json:"refreshSecret" validate:"required,min=16,nefield=AccessSecret"`

	AccessTTL  time.Duration `json:"accessTTL" default:"1h" validate:"gt=0"`
	RefreshTTL time.Duration `json:"refreshTTL" default:"168h" validate:"gt=0,gtefield=AccessTTL"`

	// HS256 / HS384 / HS512
	SigningMethod string `json:"signingMethod" default:"HS256" validate:"oneof=HS256 HS384 HS512"`
	Issuer        string `json:"issuer"`

	// 缓存 key 前缀，默认空即令牌原文作为 key
	KeyPrefix string `json:"keyPrefix"`

	// Authorization 头的认证方案
	Scheme string `json:"scheme" default:"Bearer" validate:"required"`
}

// Init 应用默认值并校验
func (c *Config) Init() error {
	if err := tag.ApplyDefaults(c); err != nil {
		return err
	}
	return validator.Validate.Struct(c)
}

// Key 令牌对应的缓存 key
func (c *Config) Key(token string) string {
	return c.KeyPrefix + token
}
