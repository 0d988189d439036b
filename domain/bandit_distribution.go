package domain

// BanditDistribution describes one arm's current posterior.
type BanditDistribution struct {
	BanditID uint64  `json:"bandit_id"`
	Price    float64 `json:"price"`
	Strategy string  `json:"strategy"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Alpha    float64 `json:"alpha,omitempty"` // bernoulli only
	Beta     float64 `json:"beta,omitempty"`  // bernoulli only
	Trials   int64   `json:"trials"`
}
