package bandit

import (
	"fmt"

	"smartPricing/domain"
)

// ValidateReward rejects rewards that the strategy's model cannot absorb.
// Bernoulli rewards must lie in [0, 1]; gaussian rewards only need to be
// finite.
func ValidateReward(strategy Strategy, reward float64) error {
	if !isFinite(reward) {
		return fmt.Errorf("%w: reward must be a finite number", domain.ErrInvalidArgument)
	}

	switch strategy {
	case StrategyBernoulli:
		if reward < 0 || reward > 1 {
			return fmt.Errorf("%w: bernoulli reward must be within [0, 1], got %v", domain.ErrInvalidArgument, reward)
		}
	case StrategyGaussian:
	default:
		return fmt.Errorf("%w: strategy %s", domain.ErrInvalidArgument, strategy)
	}

	return nil
}

func rewardDecision(strategy Strategy, decision string) string {
	if decision != "" {
		return decision
	}
	return "reward_" + strategy.String()
}

func selectionDecision(strategy Strategy) string {
	return "TS_" + strategy.String()
}
