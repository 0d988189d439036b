package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CREATE TABLE public.projects (
//     project_id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     description        TEXT NOT NULL,
//     image_path         TEXT,
//     number_bandits     INTEGER NOT NULL,
//     optimal_price      NUMERIC,
//     last_algorithm_run TIMESTAMPTZ,
//     created_at         TIMESTAMPTZ DEFAULT NOW()
// );

type Project struct {
	ID               uint64              `gorm:"column:project_id;primaryKey;autoIncrement" json:"project_id"`
	Description      string              `gorm:"column:description;type:text;not null" json:"description"`
	ImagePath        string              `gorm:"column:image_path;type:text" json:"image_path,omitempty"`
	NumberBandits    int                 `gorm:"column:number_bandits;not null" json:"number_bandits"`
	OptimalPrice     decimal.NullDecimal `gorm:"column:optimal_price;type:numeric" json:"optimal_price"`
	LastAlgorithmRun *time.Time          `gorm:"column:last_algorithm_run" json:"last_algorithm_run"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Bandits          []Bandit            `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Experiments      []Experiment        `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}

// OptimalPriceResponse is the cached snapshot of the most recent selection.
// It is denormalized and not authoritative.
type OptimalPriceResponse struct {
	ProjectID        uint64     `json:"project_id"`
	Description      string     `json:"description"`
	OptimalPrice     *float64   `json:"optimal_price"`
	LastAlgorithmRun *time.Time `json:"last_algorithm_run"`
}
