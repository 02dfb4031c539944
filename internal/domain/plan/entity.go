package plan

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

type Duration string

const (
	DurationMonth    Duration = "month"
	DurationYear     Duration = "year"
	DurationLifetime Duration = "lifetime"
)

type Plan struct {
	ID          int64          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	Features    pq.StringArray `json:"features" db:"features"`

	// Pricing
	Price    float64  `json:"price" db:"price"`
	Currency Currency `json:"currency" db:"currency"`
	Duration Duration `json:"duration" db:"duration"`

	// Status
	IsActive  bool `json:"is_active" db:"is_active"`
	IsPopular bool `json:"is_popular" db:"is_popular"`
	SortOrder int  `json:"sort_order" db:"sort_order"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExpiryFrom computes when a plan bought at activation runs out.
// Lifetime plans never expire.
func (p *Plan) ExpiryFrom(activation time.Time) sql.NullTime {
	switch p.Duration {
	case DurationMonth:
		return sql.NullTime{Time: activation.AddDate(0, 0, 30), Valid: true}
	case DurationYear:
		return sql.NullTime{Time: activation.AddDate(0, 0, 365), Valid: true}
	default:
		return sql.NullTime{}
	}
}

type PlanStats struct {
	TotalPlans    int64   `json:"total_plans"`
	ActivePlans   int64   `json:"active_plans"`
	InactivePlans int64   `json:"inactive_plans"`
	AveragePrice  float64 `json:"average_price"`
}
