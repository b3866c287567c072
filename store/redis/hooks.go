package redis

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kochabx/passport/log"
)

// commandLog 只输出命令名与耗时，不输出参数
type commandLog struct {
	logger *log.Logger
	slow   time.Duration
}

func (h commandLog) event(elapsed time.Duration, err error) *zerolog.Event {
	var e *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, redis.Nil):
		e = h.logger.Warn().Err(err)
	case h.slow > 0 && elapsed > h.slow:
		e = h.logger.Warn().Bool("slow", true)
	default:
		e = h.logger.Debug()
	}
	return e.Dur("elapsed", elapsed)
}

func (h commandLog) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		h.event(time.Since(start), err).Str("addr", addr).Msg("redis dial")
		return conn, err
	}
}

func (h commandLog) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.event(time.Since(start), err).Str("cmd", cmd.FullName()).Msg("redis command")
		return err
	}
}

func (h commandLog) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.FullName())
		}
		h.event(time.Since(start), err).Strs("cmds", names).Msg("redis pipeline")
		return err
	}
}
