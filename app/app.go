package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kochabx/passport/log"
	"github.com/kochabx/passport/transport"
)

var (
	ErrAlreadyStarted = errors.New("app: already started")
	ErrCleanupPanic   = errors.New("app: cleanup panicked")
	ErrNilServer      = errors.New("app: nil server")
	ErrNilCleanup     = errors.New("app: nil cleanup")
)

// App 运行一组 transport.Server，退出时按注册的逆序执行清理
type App struct {
	root   context.Context
	stop   context.CancelFunc
	logger *log.Logger

	drain   time.Duration
	cleanTO time.Duration
	signals []os.Signal

	mu       sync.Mutex
	servers  []transport.Server
	cleanups []cleanup
	running  bool
}

type cleanup struct {
	name    string
	fn      func(context.Context) error
	timeout time.Duration
}

// Option App 选项
type Option func(*App)

// WithContext 父上下文取消时 App 退出
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		if ctx != nil {
			a.root = ctx
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithShutdownTimeout 每个服务 Shutdown 的时限
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.drain = d
		}
	}
}

// WithCleanupTimeout 清理未指定时限时使用
func WithCleanupTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.cleanTO = d
		}
	}
}

func WithSignals(signals ...os.Signal) Option {
	return func(a *App) {
		if len(signals) > 0 {
			a.signals = signals
		}
	}
}

// WithServers 忽略 nil
func WithServers(servers ...transport.Server) Option {
	return func(a *App) {
		for _, s := range servers {
			if s != nil {
				a.servers = append(a.servers, s)
			}
		}
	}
}

// WithCleanup 忽略 nil；timeout 为 0 使用 WithCleanupTimeout 的值
func WithCleanup(name string, fn func(context.Context) error, timeout time.Duration) Option {
	return func(a *App) {
		if fn != nil {
			a.cleanups = append(a.cleanups, cleanup{name: name, fn: fn, timeout: timeout})
		}
	}
}

func New(opts ...Option) *App {
	a := &App{
		root:    context.Background(),
		logger:  log.G,
		drain:   30 * time.Second,
		cleanTO: 30 * time.Second,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.root, a.stop = context.WithCancel(a.root)
	a.logger = a.logger.Named("app")
	return a
}

// AddServer Run 之后调用返回 ErrAlreadyStarted
func (a *App) AddServer(s transport.Server) error {
	if s == nil {
		return ErrNilServer
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrAlreadyStarted
	}
	a.servers = append(a.servers, s)
	return nil
}

// AddCleanup 运行期间也可注册
func (a *App) AddCleanup(name string, fn func(context.Context) error, timeout time.Duration) error {
	if fn == nil {
		return ErrNilCleanup
	}
	a.mu.Lock()
	a.cleanups = append(a.cleanups, cleanup{name: name, fn: fn, timeout: timeout})
	a.mu.Unlock()
	return nil
}

// Run 阻塞到收到信号、Stop、父上下文取消或任一服务返回错误，随后关闭全部服务并执行清理
func (a *App) Run() error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.running = true
	servers := append([]transport.Server(nil), a.servers...)
	a.mu.Unlock()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, a.signals...)
	defer signal.Stop(sig)

	g, ctx := errgroup.WithContext(a.root)
	g.Go(func() error {
		select {
		case s := <-sig:
			a.logger.Info().Stringer("signal", s).Msg("shutting down")
			a.stop()
		case <-ctx.Done():
		}
		return nil
	})
	for _, s := range servers {
		g.Go(func() error {
			err := s.Run()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), a.drain)
			defer cancel()
			return s.Shutdown(sctx)
		})
	}

	err := g.Wait()
	if cerr := a.cleanup(); cerr != nil {
		a.logger.Error().Err(cerr).Msg("cleanup failed")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop 触发退出，不等待
func (a *App) Stop() {
	a.stop()
}

// cleanup 逆序逐个执行，先注册的依赖最后释放
func (a *App) cleanup() error {
	a.mu.Lock()
	list := append([]cleanup(nil), a.cleanups...)
	a.mu.Unlock()

	var errs []error
	for i := len(list) - 1; i >= 0; i-- {
		if err := a.runCleanup(list[i]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", list[i].name, err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) runCleanup(c cleanup) (err error) {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = a.cleanTO
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error().Interface("panic", r).Str("cleanup", c.name).Send()
				done <- ErrCleanupPanic
			}
		}()
		done <- c.fn(ctx)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		a.logger.Warn().Err(err).Str("cleanup", c.name).Msg("cleanup did not finish cleanly")
	}
	return err
}

// State 运行状态快照
type State struct {
	Running  bool `json:"running"`
	Servers  int  `json:"servers"`
	Cleanups int  `json:"cleanups"`
}

func (a *App) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return State{Running: a.running, Servers: len(a.servers), Cleanups: len(a.cleanups)}
}
