package log

import (
	"github.com/rs/zerolog"

	"github.com/kochabx/passport/log/desensitize"
)

type options struct {
	level  zerolog.Level
	caller bool
	hook   *desensitize.Hook
	fields map[string]string
}

// Option Logger 选项
type Option func(*options)

// WithLevel 设置日志级别
func WithLevel(level zerolog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithCaller 记录调用位置
func WithCaller() Option {
	return func(o *options) {
		o.caller = true
	}
}

// WithDesensitize 写入前脱敏
func WithDesensitize(hook *desensitize.Hook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// WithField 附加固定字段
func WithField(key, value string) Option {
	return func(o *options) {
		if o.fields == nil {
			o.fields = make(map[string]string)
		}
		o.fields[key] = value
	}
}
