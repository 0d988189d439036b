package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"smartPricing/business/bandit"
	"smartPricing/domain"
)

type ExperimentRepository struct {
	DB *gorm.DB
}

var _ bandit.ExperimentRepository = (*ExperimentRepository)(nil)

func NewExperimentRepository(db *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{DB: db}
}

func (r *ExperimentRepository) AppendExperiment(ctx context.Context, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(exp).Error; err != nil {
		return wrapErr("failed to append experiment", err)
	}

	return nil
}

// ListByProject returns the newest experiments first. A limit <= 0 means no limit.
func (r *ExperimentRepository) ListByProject(ctx context.Context, projectID uint64, limit int) ([]domain.Experiment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("experiment_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var exps []domain.Experiment
	if err := q.Find(&exps).Error; err != nil {
		return nil, wrapErr("failed to list experiments", err)
	}

	return exps, nil
}
