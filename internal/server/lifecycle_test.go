package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// blockingService runs until stopped, or returns result immediately when set.
type blockingService struct {
	started atomic.Bool
	stopped atomic.Bool
	once    sync.Once
	stopCh  chan struct{}
	result  func() error

	order *[]string
	mu    *sync.Mutex
	name  string
}

func newBlocking(name string, order *[]string, mu *sync.Mutex) *blockingService {
	return &blockingService{stopCh: make(chan struct{}), order: order, mu: mu, name: name}
}

func (b *blockingService) Start() error {
	b.started.Store(true)
	if b.result != nil {
		return b.result()
	}
	<-b.stopCh
	return nil
}

func (b *blockingService) Stop() {
	b.stopped.Store(true)
	if b.mu != nil {
		b.mu.Lock()
		*b.order = append(*b.order, b.name)
		b.mu.Unlock()
	}
	b.once.Do(func() { close(b.stopCh) })
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_ContextCancelStopsInReverseOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	lc := NewLifecycle(zaptest.NewLogger(t))
	a := newBlocking("a", &order, &mu)
	b := newBlocking("b", &order, &mu)
	lc.Add("a", a)
	lc.Add("b", b)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool { return a.started.Load() && b.started.Load() },
		2*time.Second, 10*time.Millisecond)
	cancel()

	assert.NoError(t, waitDone(t, done))
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestLifecycle_FinishedServiceEndsRun(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	loop := &blockingService{stopCh: make(chan struct{}), result: func() error { return nil }}
	store := &blockingService{stopCh: make(chan struct{})}
	lc.Add("store", store)
	lc.Add("loop", loop)

	err := waitDone(t, runAsync(lc, context.Background()))
	assert.NoError(t, err)
	assert.True(t, store.stopped.Load())
	assert.True(t, loop.stopped.Load())
}

func TestLifecycle_ServiceErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	lc := NewLifecycle(zaptest.NewLogger(t))
	lc.Add("broken", &blockingService{stopCh: make(chan struct{}), result: func() error { return boom }})
	other := &blockingService{stopCh: make(chan struct{})}
	lc.Add("other", other)

	err := waitDone(t, runAsync(lc, context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.True(t, other.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started, stopped := false, false
	svc := &FuncService{
		StartFn: func() error { started = true; return nil },
		StopFn:  func() { stopped = true },
	}
	assert.NoError(t, svc.Start())
	svc.Stop()
	assert.True(t, started)
	assert.True(t, stopped)

	assert.NotPanics(t, (&FuncService{StartFn: func() error { return nil }}).Stop)
}
