package bandit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// SelectOptions are the side effects a selection may carry.
type SelectOptions struct {
	// Persist writes the winning price into the project's cached optimal price.
	Persist bool
	// RecordExperiment appends a reward=0 experiment marking the selection.
	RecordExperiment bool
}

type SelectionResult struct {
	ProjectID        uint64    `json:"project_id"`
	BanditID         uint64    `json:"bandit_id"`
	OptimalPrice     float64   `json:"optimal_price"`
	Strategy         string    `json:"strategy"`
	Sample           float64   `json:"sample"`
	LastAlgorithmRun time.Time `json:"last_algorithm_run"`
}

type RewardInput struct {
	BanditID uint64
	Strategy Strategy
	Reward   float64
	Decision string
	Context  map[string]any
}

type RewardResult struct {
	Bandit     domain.Bandit     `json:"bandit"`
	Experiment domain.Experiment `json:"experiment"`
}

// ---- Usecase / Service ----

type BanditService struct {
	projectRepo    ProjectRepository
	banditRepo     BanditRepository
	experimentRepo ExperimentRepository
	selector       *Selector
	cfg            Config
	now            func() time.Time
}

func NewBanditService(
	projectRepo ProjectRepository,
	banditRepo BanditRepository,
	experimentRepo ExperimentRepository,
	sampler Sampler,
	cfg Config,
) *BanditService {
	if sampler == nil {
		sampler = NewPosteriorSampler(cfg)
	}
	return &BanditService{
		projectRepo:    projectRepo,
		banditRepo:     banditRepo,
		experimentRepo: experimentRepo,
		selector:       NewSelector(sampler),
		cfg:            cfg,
		now:            time.Now,
	}
}

//  Selection

// SelectForProject runs Thompson Sampling over the project's bandits.
func (s *BanditService) SelectForProject(
	ctx context.Context,
	projectID uint64,
	strategy Strategy,
	opts SelectOptions,
) (SelectionResult, error) {

	if !strategy.Valid() {
		return SelectionResult{}, fmt.Errorf("%w: strategy %s", domain.ErrInvalidArgument, strategy)
	}

	project, bandits, err := s.loadBandits(ctx, projectID)
	if err != nil {
		return SelectionResult{}, err
	}

	sel, err := s.selector.Select(bandits, strategy)
	if err != nil {
		return SelectionResult{}, err
	}

	now := s.now()
	winner := sel.Bandit

	tid := TraceIDFromContext(ctx)
	logger.Debug("bandit_select",
		"trace_id", tid,
		"project_id", project.ID,
		"strategy", strategy.String(),
		"bandit_count", len(bandits),
		"bandit_id", winner.ID,
		"sample", sel.Sample,
	)

	if opts.RecordExperiment {
		exp := domain.Experiment{
			ProjectID: project.ID,
			BanditID:  winner.ID,
			Decision:  selectionDecision(strategy),
			Reward:    0,
			StartDate: now,
			EndDate:   now,
		}
		if err := s.experimentRepo.AppendExperiment(ctx, &exp); err != nil {
			return SelectionResult{}, fmt.Errorf("record selection experiment: %w", err)
		}
	}

	if opts.Persist {
		// best effort: the cache is a denormalized snapshot
		if err := s.projectRepo.UpdateProjectCache(ctx, project.ID, winner.Price, now); err != nil {
			BanditCacheWriteFailuresTotal.Inc()
			logger.Warn("bandit_select_cache_write_failed",
				"trace_id", tid,
				"project_id", project.ID,
				"error", err,
			)
		}
	}

	BanditSelectionsTotal.WithLabelValues(strategy.String()).Inc()

	return SelectionResult{
		ProjectID:        project.ID,
		BanditID:         winner.ID,
		OptimalPrice:     winner.PriceFloat(),
		Strategy:         strategy.String(),
		Sample:           sel.Sample,
		LastAlgorithmRun: now,
	}, nil
}

// RunAll selects for every project independently. A project that fails is
// logged and left out of the result; only failing to list projects aborts.
func (s *BanditService) RunAll(
	ctx context.Context,
	strategy Strategy,
	opts SelectOptions,
) (map[uint64]SelectionResult, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: strategy %s", domain.ErrInvalidArgument, strategy)
	}

	ids, err := s.projectRepo.ListProjectIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	var (
		mu      sync.Mutex
		results = make(map[uint64]SelectionResult, len(ids))
		g       errgroup.Group
	)
	g.SetLimit(s.cfg.SweepConcurrency)

	for _, id := range ids {
		g.Go(func() error {
			res, err := s.SelectForProject(ctx, id, strategy, opts)
			if err != nil {
				BanditSweepProjectFailuresTotal.Inc()
				logger.Warn("bandit_run_all_project_failed",
					"trace_id", TraceIDFromContext(ctx),
					"project_id", id,
					"error", err,
				)
				return nil
			}

			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("bandit_run_all",
		"strategy", strategy.String(),
		"projects", len(ids),
		"selected", len(results),
	)

	return results, nil
}

//  Feedback / learning

// ApplyReward folds one reward into a bandit's posterior and appends the
// matching experiment in the same transaction. Lost optimistic updates are
// re-read and retried up to cfg.MaxUpdateRetries times.
func (s *BanditService) ApplyReward(ctx context.Context, in RewardInput) (RewardResult, error) {
	if err := ctx.Err(); err != nil {
		return RewardResult{}, fmt.Errorf("context error: %w", err)
	}
	if err := ValidateReward(in.Strategy, in.Reward); err != nil {
		return RewardResult{}, err
	}

	tid := TraceIDFromContext(ctx)

	for attempt := 0; ; attempt++ {
		current, err := s.banditRepo.GetBandit(ctx, in.BanditID)
		if err != nil {
			return RewardResult{}, fmt.Errorf("load bandit %d: %w", in.BanditID, err)
		}

		next := NewModel(in.Strategy, StatisticsFromBandit(current), s.cfg).Update(in.Reward)
		if !next.Finite() {
			return RewardResult{}, fmt.Errorf("%w: reward %v overflows the statistics of bandit %d",
				domain.ErrInvalidArgument, in.Reward, in.BanditID)
		}

		now := s.now()
		updated := current
		next.ApplyTo(&updated)
		updated.UpdatedAt = now

		exp := domain.Experiment{
			ProjectID: current.ProjectID,
			BanditID:  current.ID,
			Decision:  rewardDecision(in.Strategy, in.Decision),
			Reward:    in.Reward,
			StartDate: now,
			EndDate:   now,
		}
		if len(in.Context) > 0 {
			exp.Context = datatypes.JSONMap(in.Context)
		}

		err = s.banditRepo.CommitReward(ctx, &updated, current.Trial, &exp)
		if err == nil {
			BanditRewardsTotal.WithLabelValues(in.Strategy.String()).Inc()
			logger.Debug("bandit_reward",
				"trace_id", tid,
				"bandit_id", updated.ID,
				"project_id", updated.ProjectID,
				"strategy", in.Strategy.String(),
				"reward", in.Reward,
				"trial", updated.Trial,
				"mean", updated.Mean,
				"attempt", attempt+1,
			)
			return RewardResult{Bandit: updated, Experiment: exp}, nil
		}

		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return RewardResult{}, fmt.Errorf("commit reward for bandit %d: %w", in.BanditID, err)
		}

		BanditUpdateConflictsTotal.Inc()
		if attempt >= s.cfg.MaxUpdateRetries {
			return RewardResult{}, fmt.Errorf("commit reward for bandit %d after %d attempts: %w", in.BanditID, attempt+1, err)
		}
		if err := ctx.Err(); err != nil {
			return RewardResult{}, fmt.Errorf("context error: %w", err)
		}

		logger.Debug("bandit_reward_conflict_retry",
			"trace_id", tid,
			"bandit_id", in.BanditID,
			"attempt", attempt+1,
		)
	}
}
