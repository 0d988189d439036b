package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bandit is one candidate price under test. The statistics columns are only
// written by the reward transaction.
type Bandit struct {
	ID        uint64          `gorm:"column:bandit_id;primaryKey;autoIncrement" json:"bandit_id"`
	ProjectID uint64          `gorm:"column:project_id;not null;index;uniqueIndex:idx_bandits_project_price" json:"project_id"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric;not null;uniqueIndex:idx_bandits_project_price" json:"price"`

	SumReward float64 `gorm:"column:sum_reward;not null;default:0" json:"sum_reward"`
	Precision float64 `gorm:"column:precision;not null;default:1" json:"precision"`
	Mean      float64 `gorm:"column:mean;not null;default:0" json:"mean"`
	Trial     int64   `gorm:"column:trial;not null;default:0" json:"trial"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Experiments []Experiment `gorm:"foreignKey:BanditID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Bandit) TableName() string {
	return "bandits"
}

// PriceFloat is the price as float64 for JSON responses.
func (b Bandit) PriceFloat() float64 {
	f, _ := b.Price.Float64()
	return f
}
