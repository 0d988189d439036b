package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smartPricing/business/bandit"
	"smartPricing/domain"
)

type ProjectRepository struct {
	DB *gorm.DB
}

var _ bandit.ProjectRepository = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{
		DB: db,
	}
}

// Create inserts the project together with any bandits attached to it.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(project).Error; err != nil {
		return wrapErr("failed to create project", err)
	}

	return nil
}

func (r *ProjectRepository) GetProject(ctx context.Context, projectID uint64) (domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return domain.Project{}, fmt.Errorf("context error: %w", err)
	}

	var project domain.Project
	err := r.DB.WithContext(ctx).First(&project, "project_id = ?", projectID).Error
	if err != nil {
		return domain.Project{}, wrapErr(fmt.Sprintf("failed to find project %d", projectID), err)
	}

	return project, nil
}

func (r *ProjectRepository) FindAll(ctx context.Context) ([]domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var projects []domain.Project
	err := r.DB.WithContext(ctx).Order("project_id ASC").Find(&projects).Error
	if err != nil {
		return nil, wrapErr("failed to find projects", err)
	}

	return projects, nil
}

func (r *ProjectRepository) ListProjectIDs(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var ids []uint64
	err := r.DB.WithContext(ctx).
		Model(&domain.Project{}).
		Order("project_id ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, wrapErr("failed to list project ids", err)
	}

	return ids, nil
}

// UpdateProjectCache overwrites the denormalized optimal price snapshot.
func (r *ProjectRepository) UpdateProjectCache(ctx context.Context, projectID uint64, price decimal.Decimal, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.Project{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"optimal_price":      price,
			"last_algorithm_run": at,
		})
	if result.Error != nil {
		return wrapErr("failed to update project cache", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("project %d: %w", projectID, domain.ErrNotFound)
	}

	return nil
}
