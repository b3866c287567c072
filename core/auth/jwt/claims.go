package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims 会话令牌载荷
type Claims struct {
	UID         int64    `json:"uid"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// NewClaims 创建 Claims，Permissions 为空列表而不是 nil，序列化为 []
func NewClaims(uid int64) *Claims {
	return &Claims{UID: uid, Permissions: []string{}}
}

// clone 复制 Claims，签名时写入的注册字段不影响调用方
func (c *Claims) clone() *Claims {
	out := *c
	if c.Permissions == nil {
		out.Permissions = []string{}
	} else {
		out.Permissions = append([]string{}, c.Permissions...)
	}
	if c.Audience != nil {
		out.Audience = append(jwt.ClaimStrings{}, c.Audience...)
	}
	return &out
}
