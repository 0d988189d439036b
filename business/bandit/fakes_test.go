//go:build !integration

package bandit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"smartPricing/domain"
)

// memStore is an in-memory store with the same commit semantics as the
// postgres repositories: CommitReward is all-or-nothing and compares the
// stored trial count before writing.
type memStore struct {
	mu          sync.Mutex
	projects    map[uint64]domain.Project
	bandits     map[uint64]domain.Bandit
	experiments []domain.Experiment
	nextExpID   uint64

	// failure injection
	listErr        error
	cacheErr       error
	appendErr      error
	commitAppendFn func() error
	// concurrentWrites simulates another writer landing between read and commit
	concurrentWrites int
	commits          int
}

func newMemStore() *memStore {
	return &memStore{
		projects: make(map[uint64]domain.Project),
		bandits:  make(map[uint64]domain.Bandit),
	}
}

func (m *memStore) addProject(id uint64, prices ...string) []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.projects[id] = domain.Project{ID: id, Description: fmt.Sprintf("project %d", id), NumberBandits: len(prices)}

	ids := make([]uint64, 0, len(prices))
	for i, p := range prices {
		bid := id*100 + uint64(i) + 1
		st := NewStatistics()
		b := domain.Bandit{ID: bid, ProjectID: id, Price: decimal.RequireFromString(p)}
		st.ApplyTo(&b)
		m.bandits[bid] = b
		ids = append(ids, bid)
	}
	return ids
}

func (m *memStore) bandit(id uint64) domain.Bandit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bandits[id]
}

func (m *memStore) project(id uint64) domain.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id]
}

func (m *memStore) experimentsFor(banditID uint64) []domain.Experiment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Experiment
	for _, e := range m.experiments {
		if e.BanditID == banditID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) GetProject(ctx context.Context, projectID uint64) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return domain.Project{}, fmt.Errorf("project %d: %w", projectID, domain.ErrNotFound)
	}
	return p, nil
}

func (m *memStore) ListProjectIDs(ctx context.Context) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]uint64, 0, len(m.projects))
	for id := range m.projects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memStore) UpdateProjectCache(ctx context.Context, projectID uint64, price decimal.Decimal, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cacheErr != nil {
		return m.cacheErr
	}
	p := m.projects[projectID]
	p.OptimalPrice = decimal.NewNullDecimal(price)
	ts := at
	p.LastAlgorithmRun = &ts
	m.projects[projectID] = p
	return nil
}

func (m *memStore) ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Bandit
	for _, b := range m.bandits {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetBandit(ctx context.Context, banditID uint64) (domain.Bandit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bandits[banditID]
	if !ok {
		return domain.Bandit{}, fmt.Errorf("bandit %d: %w", banditID, domain.ErrNotFound)
	}
	return b, nil
}

func (m *memStore) CommitReward(ctx context.Context, bandit *domain.Bandit, expectedTrial int64, exp *domain.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.bandits[bandit.ID]
	if !ok {
		return fmt.Errorf("bandit %d: %w", bandit.ID, domain.ErrNotFound)
	}

	if m.concurrentWrites > 0 {
		m.concurrentWrites--
		next := observe(StatisticsFromBandit(stored), 0, 1)
		next.ApplyTo(&stored)
		m.bandits[stored.ID] = stored
	}

	if stored.Trial != expectedTrial {
		return fmt.Errorf("bandit %d trial moved: %w", bandit.ID, domain.ErrConcurrencyConflict)
	}

	// the experiment insert fails inside the transaction: nothing is written
	if m.commitAppendFn != nil {
		if err := m.commitAppendFn(); err != nil {
			return fmt.Errorf("insert experiment: %w", err)
		}
	}

	m.nextExpID++
	exp.ID = m.nextExpID
	m.experiments = append(m.experiments, *exp)
	m.bandits[bandit.ID] = *bandit
	m.commits++
	return nil
}

func (m *memStore) AppendExperiment(ctx context.Context, exp *domain.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.nextExpID++
	exp.ID = m.nextExpID
	m.experiments = append(m.experiments, *exp)
	return nil
}

// constSampler returns the same sample for every arm.
type constSampler float64

func (c constSampler) Sample(Strategy, Statistics) float64 { return float64(c) }

var errStoreDown = fmt.Errorf("connection refused: %w", domain.ErrStorage)

func isStorage(err error) bool { return errors.Is(err, domain.ErrStorage) }
