package desensitize

var (
	// JWTRule 紧凑 JWS，仅保留头部段 (eyJhbGci...xxx.yyy -> eyJhbGci....***)
	JWTRule = MustNewContentRule(
		"jwt",
		`\b(eyJ[A-Za-z0-9_-]{2,})\.[A-Za-z0-9_-]{2,}\.[A-Za-z0-9_-]{2,}`,
		"$1.***",
	)

	// AuthorizationRule Authorization 头中的凭证
	AuthorizationRule = MustNewContentRule(
		"authorization",
		`(?i)\b(Bearer|Basic)\s+[A-Za-z0-9._~+/=-]+`,
		"$1 ***",
	)

	PasswordRule = MustNewFieldRule("password", "password", "******")

	SecretRule = MustNewFieldRule("secret", "secret", "******")
)

// BuiltinRules 会话服务使用的默认规则
func BuiltinRules() []Rule {
	return []Rule{JWTRule, AuthorizationRule, PasswordRule, SecretRule}
}
