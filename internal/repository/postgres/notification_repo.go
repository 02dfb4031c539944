package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toolhub-service/internal/domain/notification"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	db      *pgxpool.Pool
	wrapper *DB
}

func NewNotificationRepository(db *pgxpool.Pool, wrapper *DB) *NotificationRepository {
	return &NotificationRepository{db: db, wrapper: wrapper}
}

// CreateWithRecipients inserts a notification and fans out one
// recipient row per user in a single transaction.
func (r *NotificationRepository) CreateWithRecipients(ctx context.Context, n *notification.Notification, recipients []notification.Recipient) error {
	tx, err := r.wrapper.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin notification transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO notifications (title, content, type, sender_id, is_active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = tx.QueryRow(
		ctx, query,
		n.Title, n.Content, n.Type, n.SenderID, n.IsActive, n.ExpiresAt,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	for i := range recipients {
		recipients[i].NotificationID = n.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO notification_recipients (notification_id, user_id, user_email, seen)
			VALUES ($1, $2, $3, false)
			RETURNING id
		`, n.ID, recipients[i].UserID, recipients[i].UserEmail).Scan(&recipients[i].ID)
		if err != nil {
			return fmt.Errorf("failed to create recipient row: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FindByID retrieves a notification by ID
func (r *NotificationRepository) FindByID(ctx context.Context, id int64) (*notification.Notification, error) {
	query := `
		SELECT id, title, content, type, sender_id, is_active, created_at, expires_at
		FROM notifications
		WHERE id = $1
	`

	var n notification.Notification
	err := r.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.Title, &n.Content, &n.Type, &n.SenderID,
		&n.IsActive, &n.CreatedAt, &n.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find notification: %w", err)
	}

	return &n, nil
}

// ListForUser retrieves live notifications joined with the user's seen state
func (r *NotificationRepository) ListForUser(ctx context.Context, userID int64, filters *notification.NotificationListFilters) ([]notification.UserNotification, int64, error) {
	where := `n.is_active = true AND n.expires_at > NOW() AND nr.user_id = $1`
	args := []interface{}{userID}
	argPos := 2

	if filters.Seen != nil {
		where += fmt.Sprintf(" AND nr.seen = $%d", argPos)
		args = append(args, *filters.Seen)
		argPos++
	}

	var total int64
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM notifications n
		JOIN notification_recipients nr ON nr.notification_id = n.id
		WHERE %s
	`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT n.id, n.title, n.content, n.type, n.sender_id, n.is_active,
		       n.created_at, n.expires_at, nr.seen, nr.seen_at
		FROM notifications n
		JOIN notification_recipients nr ON nr.notification_id = n.id
		WHERE %s
		ORDER BY n.created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var items []notification.UserNotification
	for rows.Next() {
		var un notification.UserNotification
		err := rows.Scan(
			&un.ID, &un.Title, &un.Content, &un.Type, &un.SenderID, &un.IsActive,
			&un.CreatedAt, &un.ExpiresAt, &un.Seen, &un.SeenAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification row: %w", err)
		}
		items = append(items, un)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// MarkSeen records that a user has seen a notification. The upsert
// keeps the first seen_at, so repeated calls are harmless.
func (r *NotificationRepository) MarkSeen(ctx context.Context, notificationID, userID int64, userEmail string) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO notification_recipients (notification_id, user_id, user_email, seen, seen_at)
		VALUES ($1, $2, $3, true, $4)
		ON CONFLICT (notification_id, user_id)
		DO UPDATE SET seen = true, seen_at = COALESCE(notification_recipients.seen_at, EXCLUDED.seen_at)
	`, notificationID, userID, userEmail, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark notification seen: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// MarkAllSeen marks every unseen notification seen for a user
func (r *NotificationRepository) MarkAllSeen(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE notification_recipients
		SET seen = true, seen_at = COALESCE(seen_at, $1)
		WHERE user_id = $2 AND seen = false
	`, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to mark all notifications seen: %w", err)
	}

	return nil
}

// GetUnreadCount counts a user's unseen, unexpired notifications
func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notification_recipients nr
		JOIN notifications n ON n.id = nr.notification_id
		WHERE nr.user_id = $1 AND nr.seen = false
		  AND n.is_active = true AND n.expires_at > NOW()
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// DeleteExpired removes every notification past its global expiry;
// recipient rows go with it via ON DELETE CASCADE.
func (r *NotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteSeenBefore prunes recipient rows whose seen_at is older than
// the cutoff. The notification itself stays until its global expiry.
func (r *NotificationRepository) DeleteSeenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM notification_recipients
		WHERE seen = true AND seen_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune seen notifications: %w", err)
	}

	return tag.RowsAffected(), nil
}
