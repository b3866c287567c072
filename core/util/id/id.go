package id

import "github.com/google/uuid"

// Generate 生成随机 UUID，用作 token 的 jti
func Generate() string {
	return uuid.NewString()
}

// Valid 判断 s 是否为合法 UUID
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
