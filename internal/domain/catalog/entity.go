package catalog

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

type ItemKind string

const (
	KindAITool        ItemKind = "ai_tool"
	KindUsefulWebsite ItemKind = "useful_website"
)

// Item is a directory entry: an AI tool or a useful website. Both
// share the same shape and live in separate tables keyed by kind.
type Item struct {
	ID          int64            `json:"id" db:"id"`
	Kind        ItemKind         `json:"kind" db:"-"`
	Name        string           `json:"name" db:"name"`
	URL         string           `json:"url" db:"url"`
	Description sql.NullString   `json:"description,omitempty" db:"description"`
	Category    sql.NullString   `json:"category,omitempty" db:"category"`
	Tags        pq.StringArray   `json:"tags" db:"tags"`
	SubmittedBy int64            `json:"submitted_by" db:"submitted_by"`
	Status      SubmissionStatus `json:"status" db:"status"`
	Likes       int              `json:"likes" db:"likes"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Like is the idempotency record preventing duplicate likes. Exactly
// one of ToolID / WebsiteID is set; uniqueness per (user, item) is
// enforced by partial unique indexes in the database.
type Like struct {
	ID        int64         `json:"id" db:"id"`
	UserID    int64         `json:"user_id" db:"user_id"`
	UserEmail string        `json:"user_email" db:"user_email"`
	ToolID    sql.NullInt64 `json:"tool_id,omitempty" db:"tool_id"`
	WebsiteID sql.NullInt64 `json:"website_id,omitempty" db:"website_id"`
	LikedAt   time.Time     `json:"liked_at" db:"liked_at"`
}
