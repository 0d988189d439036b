package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartPricing/business/bandit"
	"smartPricing/domain"
)

type BanditRepository struct {
	DB *gorm.DB
}

var _ bandit.BanditRepository = (*BanditRepository)(nil)

func NewBanditRepository(db *gorm.DB) *BanditRepository {
	return &BanditRepository{DB: db}
}

// ---- Arms ----

// ListBandits returns the project's arms in ascending id order.
func (r *BanditRepository) ListBandits(ctx context.Context, projectID uint64) ([]domain.Bandit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var bandits []domain.Bandit
	err := r.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("bandit_id ASC").
		Find(&bandits).Error
	if err != nil {
		return nil, wrapErr("failed to list bandits", err)
	}

	return bandits, nil
}

func (r *BanditRepository) GetBandit(ctx context.Context, banditID uint64) (domain.Bandit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bandit{}, fmt.Errorf("context error: %w", err)
	}

	var b domain.Bandit
	err := r.DB.WithContext(ctx).First(&b, "bandit_id = ?", banditID).Error
	if err != nil {
		return domain.Bandit{}, wrapErr(fmt.Sprintf("failed to find bandit %d", banditID), err)
	}

	return b, nil
}

// Create adds an arm with the uninformative prior and bumps the project's
// declared arm count.
func (r *BanditRepository) Create(ctx context.Context, b *domain.Bandit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Project{}).
			Where("project_id = ?", b.ProjectID).
			Update("number_bandits", gorm.Expr("number_bandits + 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("project %d: %w", b.ProjectID, domain.ErrNotFound)
		}

		return tx.Create(b).Error
	})
	if err != nil {
		return wrapErr("failed to create bandit", err)
	}

	return nil
}

// UpdatePrice changes an arm's price. Once an arm has observed a reward its
// price is frozen, otherwise the statistics would describe a different arm.
func (r *BanditRepository) UpdatePrice(ctx context.Context, banditID uint64, price decimal.Decimal) (domain.Bandit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Bandit{}, fmt.Errorf("context error: %w", err)
	}

	var b domain.Bandit
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&b, "bandit_id = ?", banditID).Error; err != nil {
			return err
		}
		if b.Trial > 0 {
			return fmt.Errorf("%w: bandit %d already has %d trials, price is immutable",
				domain.ErrInvalidArgument, banditID, b.Trial)
		}

		b.Price = price
		return tx.Model(&b).Update("price", price).Error
	})
	if err != nil {
		return domain.Bandit{}, wrapErr("failed to update bandit price", err)
	}

	return b, nil
}

// ---- Rewards ----

// CommitReward writes the new statistics and the experiment in one
// transaction. The statistics row is only updated while its trial count still
// equals expectedTrial; otherwise ErrConcurrencyConflict is returned and
// nothing is written.
func (r *BanditRepository) CommitReward(ctx context.Context, b *domain.Bandit, expectedTrial int64, exp *domain.Experiment) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Bandit{}).
			Where("bandit_id = ? AND trial = ?", b.ID, expectedTrial).
			Updates(map[string]interface{}{
				"sum_reward": b.SumReward,
				"precision":  b.Precision,
				"mean":       b.Mean,
				"trial":      b.Trial,
				"updated_at": b.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.Bandit{}).Where("bandit_id = ?", b.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("bandit %d: %w", b.ID, domain.ErrNotFound)
			}
			return fmt.Errorf("bandit %d moved past trial %d: %w", b.ID, expectedTrial, domain.ErrConcurrencyConflict)
		}

		if err := tx.Create(exp).Error; err != nil {
			return fmt.Errorf("failed to insert experiment: %w", err)
		}
		return nil
	})
	if err != nil {
		return wrapErr("failed to commit reward", err)
	}

	return nil
}
