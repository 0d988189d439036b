package bandit

import "smartPricing/domain"

const (
	priorPrecision = 1.0
	priorMean      = 0.0
)

// Statistics are the sufficient statistics persisted per arm. Both posterior
// models read the same row: SumReward doubles as the Bernoulli success count.
type Statistics struct {
	Trials    int64   `json:"trials"`
	SumReward float64 `json:"sum_reward"`
	Precision float64 `json:"precision"`
	Mean      float64 `json:"mean"`
}

// NewStatistics returns the uninformative prior every new arm starts with.
func NewStatistics() Statistics {
	return Statistics{
		Trials:    0,
		SumReward: 0,
		Precision: priorPrecision,
		Mean:      priorMean,
	}
}

func StatisticsFromBandit(b domain.Bandit) Statistics {
	return Statistics{
		Trials:    b.Trial,
		SumReward: b.SumReward,
		Precision: b.Precision,
		Mean:      b.Mean,
	}
}

// ApplyTo copies the statistics onto the bandit row. Price and identity are
// left untouched.
func (s Statistics) ApplyTo(b *domain.Bandit) {
	b.Trial = s.Trials
	b.SumReward = s.SumReward
	b.Precision = s.Precision
	b.Mean = s.Mean
}

// Finite reports whether every statistic can be stored and encoded.
func (s Statistics) Finite() bool {
	return isFinite(s.SumReward) && isFinite(s.Precision) && isFinite(s.Mean)
}
