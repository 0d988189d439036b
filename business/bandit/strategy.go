package bandit

import (
	"fmt"
	"strings"

	"smartPricing/domain"
)

// Strategy selects which posterior model reads an arm's statistics.
type Strategy int

const (
	StrategyBernoulli Strategy = iota + 1
	StrategyGaussian
)

func (s Strategy) String() string {
	switch s {
	case StrategyBernoulli:
		return "bernoulli"
	case StrategyGaussian:
		return "gaussian"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

func (s Strategy) Valid() bool {
	return s == StrategyBernoulli || s == StrategyGaussian
}

// ParseStrategy accepts exactly "bernoulli" or "gaussian". Unknown tags are
// rejected; there is no silent fallback.
func ParseStrategy(raw string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "bernoulli":
		return StrategyBernoulli, nil
	case "gaussian":
		return StrategyGaussian, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", domain.ErrInvalidArgument, raw)
	}
}

// ParseStrategyOr is ParseStrategy with a default for an omitted tag.
func ParseStrategyOr(raw string, def Strategy) (Strategy, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return ParseStrategy(raw)
}
