package log

import (
	"github.com/rs/zerolog"
)

// G 进程级 Logger，SetGlobalLogger 之前输出到控制台
var G = New(nil)

// SetGlobalLogger nil 被忽略
func SetGlobalLogger(l *Logger) {
	if l != nil {
		G = l
	}
}

func Debug() *zerolog.Event { return G.Debug() }

func Info() *zerolog.Event { return G.Info() }

func Warn() *zerolog.Event { return G.Warn() }

// Error 附带调用栈
func Error() *zerolog.Event { return G.Error().Stack() }
