package bandit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"smartPricing/domain"
)

type Config struct {
	// observation precision of the gaussian model
	Tau float64
	// precision floor applied before taking the square root
	PrecisionFloor float64

	// optimistic update retries before a conflict is surfaced
	MaxUpdateRetries int

	// projects selected in parallel by RunAll
	SweepConcurrency int
}

const (
	defaultTau              = 1.0
	defaultMaxUpdateRetries = 3
	defaultSweepConcurrency = 4
)

func DefaultConfig() Config {
	return Config{
		Tau:              defaultTau,
		PrecisionFloor:   defaultPrecisionFloor,
		MaxUpdateRetries: defaultMaxUpdateRetries,
		SweepConcurrency: defaultSweepConcurrency,
	}
}

func (c Config) Validate() error {
	if !isFinite(c.Tau) || c.Tau <= 0 {
		return fmt.Errorf("%w: tau must be positive, got %v", domain.ErrInvalidArgument, c.Tau)
	}
	if !isFinite(c.PrecisionFloor) || c.PrecisionFloor <= 0 {
		return fmt.Errorf("%w: precision floor must be positive, got %v", domain.ErrInvalidArgument, c.PrecisionFloor)
	}
	if c.MaxUpdateRetries < 0 {
		return fmt.Errorf("%w: max update retries must not be negative", domain.ErrInvalidArgument)
	}
	if c.SweepConcurrency < 1 {
		return fmt.Errorf("%w: sweep concurrency must be at least 1", domain.ErrInvalidArgument)
	}
	return nil
}

// ---- Repository interfaces ----

type ProjectRepository interface {
	GetProject(ctx context.Context, projectID uint64) (domain.Project, error)
	ListProjectIDs(ctx context.Context) ([]uint64, error)
	UpdateProjectCache(ctx context.Context, projectID uint64, optimalPrice decimal.Decimal, at time.Time) error
}

type BanditRepository interface {
	// ListBandits returns the project's bandits by ascending id.
	ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error)
	GetBandit(ctx context.Context, banditID uint64) (domain.Bandit, error)
	// CommitReward stores the bandit's statistics and appends exp in one
	// transaction. It fails with domain.ErrConcurrencyConflict when the
	// stored trial count no longer equals expectedTrial.
	CommitReward(ctx context.Context, bandit *domain.Bandit, expectedTrial int64, exp *domain.Experiment) error
}

type ExperimentRepository interface {
	AppendExperiment(ctx context.Context, exp *domain.Experiment) error
}
