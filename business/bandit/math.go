package bandit

import "math"

const (
	defaultPrecisionFloor = 1e-6
	maxSampleMagnitude    = 1e12
)

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteOr(x, fallback float64) float64 {
	if isFinite(x) {
		return x
	}
	return fallback
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// observe folds one reward into the statistics using the precision
// accumulation rule with observation precision tau:
//
//	precision' = precision + tau
//	sum'       = sum + r
//	mean'      = tau * sum' / precision'
//
// The prior is N(0, 1/priorPrecision). Trials advance with every call. A sum
// that overflows stays non-finite so the caller can refuse to store it.
func observe(s Statistics, reward, tau float64) Statistics {
	trials := s.Trials
	if trials < 0 {
		trials = 0
	}

	prec := s.Precision
	if !isFinite(prec) || prec <= 0 {
		// rebuild from the trial count when the stored value is unusable
		prec = priorPrecision + float64(trials)*tau
	}

	out := Statistics{
		Trials:    trials + 1,
		SumReward: s.SumReward + reward,
		Precision: prec + tau,
	}
	out.Mean = tau * out.SumReward / out.Precision

	return out
}

// gaussianStd is 1/sqrt(precision) with the precision floored first.
func gaussianStd(precision, floor float64) float64 {
	if floor <= 0 {
		floor = defaultPrecisionFloor
	}
	if !isFinite(precision) || precision < floor {
		precision = floor
	}
	return 1 / math.Sqrt(precision)
}
