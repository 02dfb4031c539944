package user

import (
	"database/sql"
	"time"
)

// User mirrors the identity provider's profile plus the commerce
// fields this service owns (current plan and its expiry).
type User struct {
	ID         int64          `json:"id" db:"id"`
	Email      string         `json:"email" db:"email"`
	Name       sql.NullString `json:"name,omitempty" db:"name"`
	Photo      sql.NullString `json:"photo,omitempty" db:"photo"`
	Plan       sql.NullString `json:"plan,omitempty" db:"plan"`
	PlanExpiry sql.NullTime   `json:"plan_expiry,omitempty" db:"plan_expiry"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
