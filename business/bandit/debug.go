package bandit

import (
	"context"
	"fmt"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// Distributions reports every arm's posterior under strategy, without
// sampling or touching state.
func (s *BanditService) Distributions(
	ctx context.Context,
	projectID uint64,
	strategy Strategy,
) ([]domain.BanditDistribution, error) {

	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: strategy %s", domain.ErrInvalidArgument, strategy)
	}

	_, bandits, err := s.loadBandits(ctx, projectID)
	if err != nil {
		return nil, err
	}

	logger.Debug("bandit_distributions",
		"trace_id", TraceIDFromContext(ctx),
		"project_id", projectID,
		"strategy", strategy.String(),
		"bandit_count", len(bandits),
	)

	out := make([]domain.BanditDistribution, 0, len(bandits))
	for _, b := range bandits {
		model := NewModel(strategy, StatisticsFromBandit(b), s.cfg)

		dist := domain.BanditDistribution{
			BanditID: b.ID,
			Price:    b.PriceFloat(),
			Strategy: strategy.String(),
			Mean:     model.Mean(),
			Variance: model.Variance(),
			Trials:   b.Trial,
		}
		if bm, ok := model.(BernoulliModel); ok {
			dist.Alpha = bm.Alpha()
			dist.Beta = bm.Beta()
		}

		out = append(out, dist)
	}

	return out, nil
}
