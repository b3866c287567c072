package kafka

import (
	"github.com/segmentio/kafka-go"

	"github.com/kochabx/passport/log"
)

// Option 客户端选项
type Option func(*clientOptions)

type clientOptions struct {
	logger    *log.Logger
	transport kafka.RoundTripper
}

func WithLogger(l *log.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// WithTransport 替换默认 Transport
func WithTransport(t kafka.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = t
	}
}

func applyOptions(opts []Option) *clientOptions {
	o := &clientOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
