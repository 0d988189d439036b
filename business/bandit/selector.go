package bandit

import (
	"fmt"
	"sort"

	"smartPricing/domain"
)

// Selection is the winning arm of one Thompson Sampling draw.
type Selection struct {
	Bandit domain.Bandit
	Sample float64
}

// Selector implements Thompson Sampling over a project's arms.
type Selector struct {
	sampler Sampler
}

func NewSelector(sampler Sampler) *Selector {
	return &Selector{sampler: sampler}
}

// Select draws one sample per arm and returns the arm with the largest one.
// Arms are scanned by ascending id with a strict comparison, so equal samples
// resolve to the lowest id. Arm statistics are not modified.
func (s *Selector) Select(bandits []domain.Bandit, strategy Strategy) (Selection, error) {
	if len(bandits) == 0 {
		return Selection{}, fmt.Errorf("no bandits configured: %w", domain.ErrNotFound)
	}
	if !strategy.Valid() {
		return Selection{}, fmt.Errorf("%w: strategy %s", domain.ErrInvalidArgument, strategy)
	}

	ordered := make([]domain.Bandit, len(bandits))
	copy(ordered, bandits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ID < ordered[j].ID
	})

	bestIdx := 0
	bestSample := s.sampler.Sample(strategy, StatisticsFromBandit(ordered[0]))
	for i := 1; i < len(ordered); i++ {
		sample := s.sampler.Sample(strategy, StatisticsFromBandit(ordered[i]))
		if sample > bestSample {
			bestIdx = i
			bestSample = sample
		}
	}

	return Selection{Bandit: ordered[bestIdx], Sample: bestSample}, nil
}
