package experiment

import (
	"context"
	"fmt"

	"smartPricing/domain"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type ExperimentRepository interface {
	ListByProject(ctx context.Context, projectID uint64, limit int) ([]domain.Experiment, error)
}

type ProjectReader interface {
	GetProject(ctx context.Context, projectID uint64) (domain.Project, error)
}

// ExperimentService is a read-only view on the experiment audit log.
type ExperimentService struct {
	experimentRepo ExperimentRepository
	projectRepo    ProjectReader
}

func NewExperimentService(experimentRepo ExperimentRepository, projectRepo ProjectReader) *ExperimentService {
	return &ExperimentService{
		experimentRepo: experimentRepo,
		projectRepo:    projectRepo,
	}
}

// ListByProject returns the most recent experiments, newest first.
func (s *ExperimentService) ListByProject(ctx context.Context, projectID uint64, limit int) ([]domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxLimit:
		limit = maxLimit
	}

	if _, err := s.projectRepo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	return s.experimentRepo.ListByProject(ctx, projectID, limit)
}
