package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kochabx/passport/log"
)

type Option func(*Server)

// WithName 日志中显示的服务名
func WithName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer /metrics 暴露的注册表，默认 metrics.Prom
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithHealthChecks /health 依次汇报的依赖检查
func WithHealthChecks(checks ...HealthCheck) Option {
	return func(s *Server) {
		s.checks = append(s.checks, checks...)
	}
}

// WithEngine 使用已有的 gin.Engine
func WithEngine(e *gin.Engine) Option {
	return func(s *Server) {
		if e != nil {
			s.engine = e
		}
	}
}
