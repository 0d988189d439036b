//go:build !integration

package bandit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (r *blockingRunner) RunAll(ctx context.Context, strategy Strategy, opts SelectOptions) (map[uint64]SelectionResult, error) {
	r.calls.Add(1)
	select {
	case r.started <- struct{}{}:
	default:
	}
	select {
	case <-r.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return map[uint64]SelectionResult{1: {ProjectID: 1, Strategy: strategy.String()}}, nil
}

type fakeLock struct {
	mu       sync.Mutex
	held     bool
	err      error
	acquired int
	released int
	ttl      time.Duration
}

func (l *fakeLock) Acquire(ctx context.Context, ttl time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ttl = ttl
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.acquired++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released++
		return nil
	}, true, nil
}

func TestSweeperSkipsOverlappingRun(t *testing.T) {
	runner := newBlockingRunner()
	sw := NewSweeper(runner, nil, SweeperConfig{Interval: time.Hour, Strategy: StrategyGaussian})

	done := make(chan error, 1)
	go func() {
		_, err := sw.RunOnce(context.Background())
		done <- err
	}()
	<-runner.started

	_, err := sw.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)

	close(runner.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), runner.calls.Load())

	// the slot is free again once the first sweep finished
	res, err := sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gaussian", res[1].Strategy)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestSweeperHonoursDistributedLease(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)

	lock := &fakeLock{held: true}
	sw := NewSweeper(runner, lock, SweeperConfig{Interval: time.Minute})

	_, err := sw.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
	assert.Zero(t, runner.calls.Load())
	assert.Equal(t, time.Minute, lock.ttl)

	lock.held = false
	_, err = sw.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), runner.calls.Load())
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
}

func TestSweeperLockErrorFailsRun(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)

	lockErr := errors.New("redis: connection refused")
	sw := NewSweeper(runner, &fakeLock{err: lockErr}, SweeperConfig{})

	_, err := sw.RunOnce(context.Background())
	assert.ErrorIs(t, err, lockErr)
	assert.Zero(t, runner.calls.Load())
}

func TestSweeperDefaults(t *testing.T) {
	sw := NewSweeper(newBlockingRunner(), nil, SweeperConfig{Strategy: Strategy(9)})
	assert.Equal(t, defaultSweepInterval, sw.cfg.Interval)
	assert.Equal(t, defaultSweepInterval, sw.cfg.LockTTL)
	assert.Equal(t, StrategyBernoulli, sw.cfg.Strategy)
	assert.Equal(t, "bandit-sweeper", sw.String())
}

func TestSweeperServeTicksAndStops(t *testing.T) {
	runner := newBlockingRunner()
	close(runner.release)

	sw := NewSweeper(runner, nil, SweeperConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sw.Serve(ctx) }()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
