package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Experiment is an append-only audit entry: a reward attributed to a bandit,
// or a marker that a selection happened (reward 0).
type Experiment struct {
	ID        uint64            `gorm:"column:experiment_id;primaryKey;autoIncrement" json:"experiment_id"`
	ProjectID uint64            `gorm:"column:project_id;not null;index" json:"project_id"`
	BanditID  uint64            `gorm:"column:bandit_id;not null;index" json:"bandit_id"`
	Decision  string            `gorm:"column:decision;not null" json:"decision"`
	Reward    float64           `gorm:"column:reward;not null" json:"reward"`
	StartDate time.Time         `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time         `gorm:"column:end_date" json:"end_date"`
	Context   datatypes.JSONMap `gorm:"column:context;type:jsonb" json:"context,omitempty"`
}

func (Experiment) TableName() string {
	return "experiments"
}
