package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"

	"github.com/kochabx/passport/core/auth/audit"
	"github.com/kochabx/passport/core/auth/jwt"
	"github.com/kochabx/passport/core/auth/session/cache"
	"github.com/kochabx/passport/core/tag"
	"github.com/kochabx/passport/log"
)

// SweeperConfig 孤立 key 清理配置
type SweeperConfig struct {
	Enabled bool `json:"enabled"`

	// 5 字段 cron 表达式或 @every 等描述符
	Spec    string        `json:"spec" default:"@every 10m"`
	Workers int           `json:"workers" default:"8" validate:"gte=1"`
	Timeout time.Duration `json:"timeout" default:"5m"`
	// 签发不足 Grace 的会话视为写入中，不清理
	Grace   time.Duration `json:"grace" default:"1m"`
}

// SweepResult 单次清理统计
type SweepResult struct {
	Scanned int64 `json:"scanned"`
	Removed int64 `json:"removed"`
	Skipped int64 `json:"skipped"`
	Failed  int64 `json:"failed"`
}

// Sweeper 清理非原子双写/双删留下的单边 key：
// 载荷可解析、属于本 key、签发超过 Grace，且另一个 key 缺失或内容不同
type Sweeper struct {
	cfg   *Config
	scfg  SweeperConfig
	cache cache.ScanCache
	*options

	cron *cron.Cron
	pool *ants.Pool
	now  func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewSweeper c 须实现 cache.Scanner
func NewSweeper(cfg *Config, c cache.Cache, scfg SweeperConfig, opts ...Option) (*Sweeper, error) {
	sc, ok := c.(cache.ScanCache)
	if !ok {
		return nil, ErrScanUnsupported
	}
	if err := tag.ApplyDefaults(&scfg); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(scfg.Workers, ants.WithPreAlloc(true))
	if err != nil {
		return nil, fmt.Errorf("session: create sweeper pool: %w", err)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(scfg.Spec)
	if err != nil {
		pool.Release()
		return nil, fmt.Errorf("session: invalid sweeper spec %q: %w", scfg.Spec, err)
	}

	o := newOptions(cfg, opts)
	o.logger = &log.Logger{Logger: o.logger.With().Str("job", "sweeper").Logger()}
	s := &Sweeper{
		cfg:     cfg,
		scfg:    scfg,
		cache:   sc,
		options: o,
		pool:    pool,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	logger := cronLogger{o.logger}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s.cron.Schedule(schedule, cron.FuncJob(s.runOnce))
	return s, nil
}

// Sweep 执行一次完整清理，可重复执行
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var (
		scanned, removed, skipped, failed atomic.Int64
		wg                                sync.WaitGroup
	)

	err := s.cache.Scan(ctx, s.cfg.KeyPrefix, func(key string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		scanned.Add(1)
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			switch ok, err := s.check(ctx, key); {
			case err != nil:
				failed.Add(1)
				s.logger.Warn().Err(err).Msg("sweep key failed")
			case ok:
				removed.Add(1)
			default:
				skipped.Add(1)
			}
		})
		if err != nil {
			wg.Done()
		}
		return err
	})
	wg.Wait()

	res := SweepResult{
		Scanned: scanned.Load(),
		Removed: removed.Load(),
		Skipped: skipped.Load(),
		Failed:  failed.Load(),
	}
	s.metrics.addSwept(int(res.Removed))
	if res.Removed > 0 {
		s.audit.Emit(ctx, audit.Event{
			Type:     audit.EventSweeperRemoved,
			Time:     s.now(),
			Success:  err == nil,
			Metadata: map[string]string{"removed": strconv.FormatInt(res.Removed, 10)},
		})
	}
	return res, err
}

// check 返回 true 表示删除了 key
func (s *Sweeper) check(ctx context.Context, key string) (bool, error) {
	value, ok, err := s.cache.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	p, err := DecodePayload(value)
	if err != nil {
		return false, nil
	}

	token := strings.TrimPrefix(key, s.cfg.KeyPrefix)
	var sibling string
	switch token {
	case p.AccessToken:
		sibling = p.RefreshToken
	case p.RefreshToken:
		sibling = p.AccessToken
	default:
		return false, nil
	}
	if sibling == "" || sibling == token {
		return false, nil
	}

	if iat, ok := jwt.IssuedAt(token); ok && s.now().Sub(iat) < s.scfg.Grace {
		return false, nil
	}

	sv, ok, err := s.cache.Get(ctx, s.cfg.Key(sibling))
	if err != nil {
		return false, err
	}
	if ok {
		if sp, err := DecodePayload(sv); err == nil &&
			sp.AccessToken == p.AccessToken && sp.RefreshToken == p.RefreshToken {
			return false, nil
		}
	}

	if err := s.cache.Del(ctx, key); err != nil {
		return false, err
	}
	s.logger.Debug().Int64("uid", p.UID).Msg("orphaned session key removed")
	return true, nil
}

// Timeout 单次清理的超时
func (s *Sweeper) Timeout() time.Duration {
	return s.scfg.Timeout
}

// Run 按 Spec 定时清理，阻塞到 Shutdown
func (s *Sweeper) Run() error {
	s.cron.Start()

	s.logger.Info().Str("spec", s.scfg.Spec).Int("workers", s.scfg.Workers).Msg("sweeper started")
	<-s.done
	return nil
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.scfg.Timeout)
	defer cancel()

	start := s.now()
	res, err := s.Sweep(ctx)
	ev := s.logger.Info()
	if err != nil {
		ev = s.logger.Warn().Err(err)
	}
	ev.Int64("scanned", res.Scanned).
		Int64("removed", res.Removed).
		Int64("failed", res.Failed).
		Dur("elapsed", s.now().Sub(start)).
		Msg("sweep finished")
}

// Shutdown 停止调度并等待正在执行的清理结束
func (s *Sweeper) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		defer close(s.done)
		select {
		case <-s.cron.Stop().Done():
		case <-ctx.Done():
			err = ctx.Err()
		}
		s.pool.Release()
		s.logger.Info().Msg("sweeper stopped")
	})
	return err
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
