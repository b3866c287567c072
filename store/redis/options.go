package redis

import (
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/kochabx/passport/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger *log.Logger
	hooks  []redis.Hook

	// 为 nil 表示不启用
	tracing []redisotel.TracingOption
	metrics []redisotel.MetricsOption

	commandLog bool
	slow       time.Duration
}

func WithLogger(logger *log.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithHooks(hooks ...redis.Hook) Option {
	return func(o *clientOptions) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithTracing 通过 redisotel 上报 span
func WithTracing(opts ...redisotel.TracingOption) Option {
	return func(o *clientOptions) {
		o.tracing = append([]redisotel.TracingOption{}, opts...)
	}
}

// WithMetrics 通过 redisotel 上报指标
func WithMetrics(opts ...redisotel.MetricsOption) Option {
	return func(o *clientOptions) {
		o.metrics = append([]redisotel.MetricsOption{}, opts...)
	}
}

// WithCommandLog 以 debug 级别记录命令名，耗时超过 slow 的命令记为 warn，slow 为 0 不判定慢命令
func WithCommandLog(slow time.Duration) Option {
	return func(o *clientOptions) {
		o.commandLog = true
		o.slow = slow
	}
}
