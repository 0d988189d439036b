package bandit

import (
	"context"
	"fmt"

	"smartPricing/domain"
)

// loadBandits loads the project and its arms, failing with ErrNotFound when
// either is missing.
func (s *BanditService) loadBandits(
	ctx context.Context,
	projectID uint64,
) (domain.Project, []domain.Bandit, error) {

	if err := ctx.Err(); err != nil {
		return domain.Project{}, nil, fmt.Errorf("context error: %w", err)
	}

	project, err := s.projectRepo.GetProject(ctx, projectID)
	if err != nil {
		return domain.Project{}, nil, fmt.Errorf("load project %d: %w", projectID, err)
	}

	bandits, err := s.banditRepo.ListBandits(ctx, projectID)
	if err != nil {
		return domain.Project{}, nil, fmt.Errorf("load bandits for project %d: %w", projectID, err)
	}
	if len(bandits) == 0 {
		return domain.Project{}, nil, fmt.Errorf("project %d has no bandits configured: %w", projectID, domain.ErrNotFound)
	}

	return project, bandits, nil
}
