package bandit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"smartPricing/pkg/logger"
)

// ErrSweepInProgress is returned by RunOnce when another sweep holds the slot.
var ErrSweepInProgress = errors.New("sweep already in progress")

type SweepRunner interface {
	RunAll(ctx context.Context, strategy Strategy, opts SelectOptions) (map[uint64]SelectionResult, error)
}

// SweepLock is a lease shared by every replica, so one sweep runs per tick
// across the deployment.
type SweepLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}

type SweeperConfig struct {
	Interval time.Duration
	Strategy Strategy
	Options  SelectOptions
	// LockTTL bounds how long a crashed replica can hold the lease.
	LockTTL time.Duration
}

const defaultSweepInterval = 10 * time.Minute

// Sweeper runs RunAll on a fixed interval. A tick that fires while the
// previous sweep is still running is skipped.
type Sweeper struct {
	runner  SweepRunner
	lock    SweepLock
	cfg     SweeperConfig
	running atomic.Bool
	wg      sync.WaitGroup
	name    string
}

func NewSweeper(runner SweepRunner, lock SweepLock, cfg SweeperConfig) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultSweepInterval
	}
	if !cfg.Strategy.Valid() {
		cfg.Strategy = StrategyBernoulli
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Interval
	}
	return &Sweeper{
		runner: runner,
		lock:   lock,
		cfg:    cfg,
		name:   "bandit-sweeper",
	}
}

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	logger.Info("bandit_sweeper_started",
		"interval", s.cfg.Interval.String(),
		"strategy", s.cfg.Strategy.String(),
		"persist", s.cfg.Options.Persist,
		"record_experiment", s.cfg.Options.RecordExperiment,
	)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				_, _ = s.RunOnce(ctx)
			}()
		}
	}
}

// RunOnce performs a single guarded sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (map[uint64]SelectionResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		BanditSweepRunsTotal.WithLabelValues("skipped").Inc()
		logger.Warn("bandit_sweep_skipped", "reason", "previous sweep still running")
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	if s.lock != nil {
		release, ok, err := s.lock.Acquire(ctx, s.cfg.LockTTL)
		if err != nil {
			BanditSweepRunsTotal.WithLabelValues("failed").Inc()
			logger.Error("bandit_sweep_lock_failed", "error", err)
			return nil, fmt.Errorf("acquire sweep lock: %w", err)
		}
		if !ok {
			BanditSweepRunsTotal.WithLabelValues("lock_held").Inc()
			logger.Info("bandit_sweep_skipped", "reason", "lease held by another replica")
			return nil, ErrSweepInProgress
		}
		defer func() {
			// release on a fresh context so shutdown does not leak the lease
			relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := release(relCtx); err != nil {
				logger.Warn("bandit_sweep_lock_release_failed", "error", err)
			}
		}()
	}

	start := time.Now()
	results, err := s.runner.RunAll(ctx, s.cfg.Strategy, s.cfg.Options)
	BanditSweepDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		BanditSweepRunsTotal.WithLabelValues("failed").Inc()
		logger.Error("bandit_sweep_failed", "error", err)
		return nil, err
	}

	BanditSweepRunsTotal.WithLabelValues("completed").Inc()
	logger.Info("bandit_sweep_completed",
		"selected", len(results),
		"duration", time.Since(start).String(),
	)
	return results, nil
}

// String implements fmt.Stringer; suture uses it in its events.
func (s *Sweeper) String() string {
	return s.name
}
