package bandit

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// PosteriorModel is one arm's belief about its expected reward.
type PosteriorModel interface {
	// Sample draws from the posterior. It always returns a finite value.
	Sample(src rand.Source) float64
	// Update returns the statistics after observing reward. The receiver is
	// not modified.
	Update(reward float64) Statistics
	Mean() float64
	Variance() float64
}

// NewModel reads stats under the given strategy.
func NewModel(strategy Strategy, stats Statistics, cfg Config) PosteriorModel {
	if strategy == StrategyGaussian {
		return GaussianModel{stats: stats, tau: cfg.Tau, floor: cfg.PrecisionFloor}
	}
	return BernoulliModel{stats: stats, tau: cfg.Tau}
}

// BernoulliModel is Beta(1+successes, 1+failures): a uniform prior on the
// conversion rate updated by 0/1 rewards.
type BernoulliModel struct {
	stats Statistics
	tau   float64
}

func (m BernoulliModel) Successes() float64 {
	s := finiteOr(m.stats.SumReward, 0)
	if s < 0 {
		return 0
	}
	return s
}

func (m BernoulliModel) Failures() float64 {
	f := float64(m.stats.Trials) - m.Successes()
	if f < 0 {
		return 0
	}
	return f
}

func (m BernoulliModel) Alpha() float64 { return 1 + m.Successes() }
func (m BernoulliModel) Beta() float64  { return 1 + m.Failures() }

func (m BernoulliModel) Sample(src rand.Source) float64 {
	x := distuv.Beta{Alpha: m.Alpha(), Beta: m.Beta(), Src: src}.Rand()
	if math.IsNaN(x) {
		return m.Mean()
	}
	return clamp(x, 0, 1)
}

func (m BernoulliModel) Update(reward float64) Statistics {
	return observe(m.stats, reward, m.tau)
}

func (m BernoulliModel) Mean() float64 {
	a, b := m.Alpha(), m.Beta()
	return a / (a + b)
}

func (m BernoulliModel) Variance() float64 {
	a, b := m.Alpha(), m.Beta()
	n := a + b
	return a * b / (n * n * (n + 1))
}

// GaussianModel is Normal(mean, 1/sqrt(precision)), the posterior of a
// normal mean with known observation precision tau.
type GaussianModel struct {
	stats Statistics
	tau   float64
	floor float64
}

func (m GaussianModel) Sample(src rand.Source) float64 {
	mu := m.Mean()
	x := distuv.Normal{Mu: mu, Sigma: gaussianStd(m.stats.Precision, m.floor), Src: src}.Rand()
	if !isFinite(x) {
		return mu
	}
	return clamp(x, -maxSampleMagnitude, maxSampleMagnitude)
}

func (m GaussianModel) Update(reward float64) Statistics {
	return observe(m.stats, reward, m.tau)
}

func (m GaussianModel) Mean() float64 {
	return clamp(finiteOr(m.stats.Mean, priorMean), -maxSampleMagnitude, maxSampleMagnitude)
}

func (m GaussianModel) Variance() float64 {
	std := gaussianStd(m.stats.Precision, m.floor)
	return std * std
}
