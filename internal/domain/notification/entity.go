package notification

import (
	"database/sql"
	"time"
)

type NotificationType string

const (
	TypeGeneral      NotificationType = "general"
	TypeImportant    NotificationType = "important"
	TypeUpdate       NotificationType = "update"
	TypeAnnouncement NotificationType = "announcement"
)

// Lifetime is how long a notification stays visible after it is sent.
// The same window applies per recipient once they have seen it.
const Lifetime = 24 * time.Hour

type Notification struct {
	ID        int64            `json:"id" db:"id"`
	Title     string           `json:"title" db:"title"`
	Content   string           `json:"content" db:"content"`
	Type      NotificationType `json:"type" db:"type"`
	SenderID  int64            `json:"sender_id" db:"sender_id"`
	IsActive  bool             `json:"is_active" db:"is_active"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	ExpiresAt time.Time        `json:"expires_at" db:"expires_at"`
}

// Recipient tracks one user's view of a notification. At most one
// row exists per (notification, user).
type Recipient struct {
	ID             int64        `json:"id" db:"id"`
	NotificationID int64        `json:"notification_id" db:"notification_id"`
	UserID         int64        `json:"user_id" db:"user_id"`
	UserEmail      string       `json:"user_email" db:"user_email"`
	Seen           bool         `json:"seen" db:"seen"`
	SeenAt         sql.NullTime `json:"seen_at,omitempty" db:"seen_at"`
}

// UserNotification is a notification joined with the requesting
// user's seen state, for list endpoints.
type UserNotification struct {
	Notification
	Seen   bool         `json:"seen" db:"seen"`
	SeenAt sql.NullTime `json:"seen_at,omitempty" db:"seen_at"`
}
