package middleware

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/passport/log"
)

// LoggerConfig 访问日志配置
type LoggerConfig struct {
	Logger *log.Logger
	// 记录处理器名称
	HandlerEnabled bool
	// 跳过的路径
	SkipPaths []string
	// 返回 true 时跳过，优先于 SkipPaths
	Filter func(c *gin.Context) bool
}

// GinLogger 默认访问日志
func GinLogger() gin.HandlerFunc {
	return GinLoggerWithConfig(LoggerConfig{SkipPaths: []string{"/health", "/metrics"}})
}

// GinLoggerWithConfig 不记录请求头与请求体，Authorization 不会进入日志
func GinLoggerWithConfig(cfg LoggerConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = log.G
	}

	return func(c *gin.Context) {
		if skip(c, cfg) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		event := logger.Info().
			Int("status", c.Writer.Status()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP())
		if cfg.HandlerEnabled {
			event = event.Str("handler", c.HandlerName())
		}
		if id := c.GetHeader("X-Request-Id"); id != "" {
			event = event.Str("request_id", id)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		event.Send()
	}
}

func skip(c *gin.Context, cfg LoggerConfig) bool {
	if cfg.Filter != nil {
		return cfg.Filter(c)
	}
	return slices.Contains(cfg.SkipPaths, c.Request.URL.Path)
}
