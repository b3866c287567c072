package log

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/log/desensitize"
	"github.com/kochabx/passport/log/writer"
)

// Logger 日志记录器
type Logger struct {
	zerolog.Logger
	hook   *desensitize.Hook
	closer io.Closer
}

func init() {
	zerolog.TimeFieldFormat = time.DateTime
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
}

func newLogger(w io.Writer, opts ...Option) *Logger {
	o := &options{level: zerolog.DebugLevel}
	for _, opt := range opts {
		opt(o)
	}

	if o.hook != nil {
		w = desensitize.NewWriter(w, o.hook)
	}

	ctx := zerolog.New(w).Level(o.level).With().Timestamp()
	if o.caller {
		ctx = ctx.Caller()
	}
	for k, v := range o.fields {
		ctx = ctx.Str(k, v)
	}
	return &Logger{Logger: ctx.Logger(), hook: o.hook}
}

// New 输出到 w 的 Logger，w 为 nil 时输出到控制台
func New(w io.Writer, opts ...Option) *Logger {
	if w == nil {
		w = writer.Console(nil)
	}
	return newLogger(w, opts...)
}

// NewFile 输出到轮转文件的 Logger
func NewFile(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	fw, err := writer.File(c.rotateConfig())
	if err != nil {
		return nil, err
	}
	l := newLogger(fw, opts...)
	l.closer = fw
	return l, nil
}

// NewMulti 同时输出到文件和控制台
func NewMulti(c FileConfig, opts ...Option) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	fw, err := writer.File(c.rotateConfig())
	if err != nil {
		return nil, err
	}
	l := newLogger(zerolog.MultiLevelWriter(fw, writer.Console(nil)), opts...)
	l.closer = fw
	return l, nil
}

// NewFromConfig 按配置创建 Logger
func NewFromConfig(c Config) (*Logger, error) {
	if err := tag.ApplyDefaults(&c); err != nil {
		return nil, fmt.Errorf("log: apply defaults: %w", err)
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log: %w", err)
	}

	opts := []Option{WithLevel(level)}
	if c.Caller {
		opts = append(opts, WithCaller())
	}
	if c.Desensitize {
		opts = append(opts, WithDesensitize(desensitize.NewHook(desensitize.BuiltinRules()...)))
	}

	switch c.Output {
	case "file":
		return NewFile(c.File, opts...)
	case "multi":
		return NewMulti(c.File, opts...)
	default:
		return New(nil, opts...), nil
	}
}

// Named 返回带 component 字段的子 Logger
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With().Str("component", component).Logger(),
		hook:   l.hook,
	}
}

// Hook 脱敏钩子，未设置时为 nil
func (l *Logger) Hook() *desensitize.Hook {
	return l.hook
}

// Close 释放文件句柄
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
