package desensitize

import (
	"errors"
	"fmt"
	"regexp"
)

// Rule 脱敏规则
type Rule interface {
	Name() string
	Process(s string) string
}

// ContentRule 按正则替换匹配到的内容
type ContentRule struct {
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule 创建内容规则，replacement 支持 $1 等分组引用
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, errors.New("desensitize: rule name cannot be empty")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("desensitize: invalid pattern %q: %w", pattern, err)
	}
	return &ContentRule{name: name, pattern: re, replacement: replacement}, nil
}

// MustNewContentRule 同 NewContentRule，失败时 panic
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	r, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *ContentRule) Name() string { return r.name }

func (r *ContentRule) Process(s string) string {
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule 替换 JSON 日志中指定字符串字段的值
type FieldRule struct {
	name        string
	field       string
	pattern     *regexp.Regexp
	replacement string
}

// NewFieldRule 创建字段规则
func NewFieldRule(name, field, replacement string) (*FieldRule, error) {
	if name == "" || field == "" {
		return nil, errors.New("desensitize: rule name and field cannot be empty")
	}
	re := regexp.MustCompile(fmt.Sprintf(`"%s"\s*:\s*"(?:[^"\\]|\\.)*"`, regexp.QuoteMeta(field)))
	return &FieldRule{name: name, field: field, pattern: re, replacement: replacement}, nil
}

// MustNewFieldRule 同 NewFieldRule，失败时 panic
func MustNewFieldRule(name, field, replacement string) *FieldRule {
	r, err := NewFieldRule(name, field, replacement)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *FieldRule) Name() string { return r.name }

func (r *FieldRule) Process(s string) string {
	return r.pattern.ReplaceAllLiteralString(s, fmt.Sprintf(`"%s":"%s"`, r.field, r.replacement))
}
