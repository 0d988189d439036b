package bandit

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Sampler draws one posterior sample for an arm.
type Sampler interface {
	Sample(strategy Strategy, stats Statistics) float64
}

// lockedSource makes a rand.Source safe for concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

// PosteriorSampler samples from the strategy's PosteriorModel.
type PosteriorSampler struct {
	cfg Config
	src rand.Source
}

// NewPosteriorSampler seeds from the clock; use NewSeededSampler for
// reproducible draws.
func NewPosteriorSampler(cfg Config) *PosteriorSampler {
	seed := uint64(time.Now().UnixNano())
	return NewSeededSampler(cfg, seed)
}

func NewSeededSampler(cfg Config, seed uint64) *PosteriorSampler {
	return &PosteriorSampler{
		cfg: cfg,
		src: &lockedSource{src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)},
	}
}

func (p *PosteriorSampler) Sample(strategy Strategy, stats Statistics) float64 {
	return NewModel(strategy, stats, p.cfg).Sample(p.src)
}
