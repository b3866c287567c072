package session

import (
	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/jwt"
	"github.com/kochabx/passport/log"
)

type options struct {
	logger  *log.Logger
	metrics *Metrics
	audit   audit.Sink
	signer  jwt.Signer
}

// Option 会话组件选项
type Option func(*options)

func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics nil 表示不采集
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithAuditSink 默认丢弃审计事件
func WithAuditSink(s audit.Sink) Option {
	return func(o *options) {
		o.audit = s
	}
}

// WithSigner 替换默认的 HMAC 签名器
func WithSigner(s jwt.Signer) Option {
	return func(o *options) {
		o.signer = s
	}
}

func newOptions(cfg *Config, opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = log.G
	}
	o.logger = o.logger.Named("session")
	if o.audit == nil {
		o.audit = audit.NoopSink{}
	}
	if o.signer == nil {
		o.signer = jwt.NewHMACSigner(jwt.WithMethod(cfg.SigningMethod), jwt.WithIssuer(cfg.Issuer))
	}
	return o
}
