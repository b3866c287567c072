// Package audit 会话生命周期审计事件
package audit

import (
	"context"
	"time"

	"github.com/kochabx/passport/log"
)

// 事件类型
const (
	EventSessionIssued    = "session.issued"
	EventSessionRevoked   = "session.revoked"
	EventSessionRefreshed = "session.refreshed"
	EventLoginFailed      = "login.failed"
	EventSweeperRemoved   = "sweeper.removed"
)

// Event 审计事件，不包含令牌原文
type Event struct {
	Type     string            `json:"type"`
	UID      int64             `json:"uid,omitempty"`
	Time     time.Time         `json:"time"`
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Sink 事件投递，实现不得阻塞调用方太久且不返回错误
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoopSink 丢弃所有事件
type NoopSink struct{}

func (NoopSink) Emit(context.Context, Event) {}

// LogSink 以 info 级别写入日志
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.G
	}
	return &LogSink{logger: logger.Named("audit")}
}

func (s *LogSink) Emit(_ context.Context, e Event) {
	ev := s.logger.Info().
		Str("type", e.Type).
		Int64("uid", e.UID).
		Bool("success", e.Success).
		Time("at", e.Time)
	if e.Error != "" {
		ev = ev.Str("error", e.Error)
	}
	for k, v := range e.Metadata {
		ev = ev.Str(k, v)
	}
	ev.Msg("audit")
}
