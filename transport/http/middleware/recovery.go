package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/passport/log"
)

// RecoveryConfig Recovery 中间件配置
type RecoveryConfig struct {
	Logger *log.Logger
	// 不记录堆栈
	DisableStack bool
}

// Recovery 捕获 panic 并返回 500
func Recovery(cfgs ...RecoveryConfig) gin.HandlerFunc {
	var cfg RecoveryConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.G
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if isBrokenPipe(r) {
				cfg.Logger.Warn().
					Str("error", fmt.Sprint(r)).
					Str("path", c.Request.URL.Path).
					Msg("broken pipe")
				_ = c.Error(fmt.Errorf("%v", r))
				c.Abort()
				return
			}

			event := cfg.Logger.Error().
				Str("error", fmt.Sprint(r)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path)
			if !cfg.DisableStack {
				event = event.Bytes("stack", debug.Stack())
			}
			event.Msg("panic recovered")
			c.AbortWithStatus(http.StatusInternalServerError)
		}()
		c.Next()
	}
}

func isBrokenPipe(r any) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
