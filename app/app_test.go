package app

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/passport/log"
)

// blockingServer Run 阻塞到 Shutdown
type blockingServer struct {
	done     chan struct{}
	runErr   error
	shutdown atomic.Bool
}

func newBlockingServer() *blockingServer {
	return &blockingServer{done: make(chan struct{})}
}

func (s *blockingServer) Run() error {
	if s.runErr != nil {
		return s.runErr
	}
	<-s.done
	return nil
}

func (s *blockingServer) Shutdown(context.Context) error {
	if s.shutdown.CompareAndSwap(false, true) {
		close(s.done)
	}
	return nil
}

func quiet() Option {
	return WithLogger(log.New(&bytes.Buffer{}))
}

func TestNewSkipsNil(t *testing.T) {
	a := New(
		quiet(),
		WithServers(newBlockingServer(), nil, newBlockingServer()),
		WithCleanup("nil", nil, 0),
		WithCleanup("noop", func(context.Context) error { return nil }, 0),
	)

	st := a.State()
	assert.False(t, st.Running)
	assert.Equal(t, 2, st.Servers)
	assert.Equal(t, 1, st.Cleanups)
}

func TestRunUntilStop(t *testing.T) {
	s1, s2 := newBlockingServer(), newBlockingServer()
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}
	a := New(quiet(), WithServers(s1, s2), WithCleanup("redis", record("redis"), time.Second))
	require.NoError(t, a.AddCleanup("db", record("db"), 0))

	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	require.Eventually(t, func() bool { return a.State().Running }, time.Second, 10*time.Millisecond)
	a.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.True(t, s1.shutdown.Load())
	assert.True(t, s2.shutdown.Load())
	assert.Equal(t, []string{"db", "redis"}, order)
	assert.ErrorIs(t, a.Run(), ErrAlreadyStarted)
}

func TestRunServerError(t *testing.T) {
	boom := errors.New("listen failed")
	failing := newBlockingServer()
	failing.runErr = boom
	healthy := newBlockingServer()
	var cleaned atomic.Bool

	a := New(
		quiet(),
		WithServers(failing, healthy),
		WithCleanup("db", func(context.Context) error { cleaned.Store(true); return nil }, time.Second),
	)

	assert.ErrorIs(t, a.Run(), boom)
	assert.True(t, healthy.shutdown.Load())
	assert.True(t, cleaned.Load())
}

func TestRunWithCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(quiet(), WithContext(ctx), WithServers(newBlockingServer()))
	done := make(chan error, 1)
	go func() { done <- a.Run() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run should return for a canceled parent context")
	}
}

func TestAddServer(t *testing.T) {
	a := New(quiet())
	assert.ErrorIs(t, a.AddServer(nil), ErrNilServer)
	require.NoError(t, a.AddServer(newBlockingServer()))
	assert.Equal(t, 1, a.State().Servers)

	a.running = true
	assert.ErrorIs(t, a.AddServer(newBlockingServer()), ErrAlreadyStarted)
}

func TestAddNilCleanup(t *testing.T) {
	assert.ErrorIs(t, New(quiet()).AddCleanup("x", nil, 0), ErrNilCleanup)
}

func TestCleanupPanic(t *testing.T) {
	a := New(quiet(), WithCleanup("panic", func(context.Context) error { panic("boom") }, time.Second))
	var err error
	assert.NotPanics(t, func() { err = a.cleanup() })
	assert.ErrorIs(t, err, ErrCleanupPanic)
}

func TestCleanupTimeout(t *testing.T) {
	a := New(quiet(), WithCleanup("slow", func(ctx context.Context) error {
		time.Sleep(2 * time.Second)
		return nil
	}, 100*time.Millisecond))

	start := time.Now()
	err := a.cleanup()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDefaultCleanupTimeout(t *testing.T) {
	a := New(quiet(), WithCleanupTimeout(50*time.Millisecond), WithShutdownTimeout(0))
	assert.Equal(t, 30*time.Second, a.drain)

	var deadline time.Time
	require.NoError(t, a.AddCleanup("x", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	}, 0))
	require.NoError(t, a.cleanup())
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
}
