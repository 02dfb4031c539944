package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/catalog"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository serves both directory tables. The kind decides
// which table a query touches; table names are fixed at compile time.
type CatalogRepository struct {
	db      *pgxpool.Pool
	wrapper *DB
}

func NewCatalogRepository(db *pgxpool.Pool, wrapper *DB) *CatalogRepository {
	return &CatalogRepository{db: db, wrapper: wrapper}
}

func tableFor(kind catalog.ItemKind) (string, error) {
	switch kind {
	case catalog.KindAITool:
		return "ai_tools", nil
	case catalog.KindUsefulWebsite:
		return "useful_websites", nil
	default:
		return "", fmt.Errorf("%w: unknown item kind %q", xerrors.ErrInvalidInput, kind)
	}
}

const itemColumns = `id, name, url, description, category, tags, submitted_by,
	       status, likes, created_at, updated_at`

// Create inserts a directory item. Duplicate URLs surface as
// xerrors.ErrDuplicateEntry via the unique index on url.
func (r *CatalogRepository) Create(ctx context.Context, item *catalog.Item) error {
	table, err := tableFor(item.Kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, url, description, category, tags, submitted_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, likes, created_at, updated_at
	`, table)

	err = r.db.QueryRow(
		ctx, query,
		item.Name, item.URL, item.Description, item.Category,
		item.Tags, item.SubmittedBy, item.Status,
	).Scan(&item.ID, &item.Likes, &item.CreatedAt, &item.UpdatedAt)

	if isUniqueViolation(err, "") {
		return fmt.Errorf("%w: url already submitted", xerrors.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", table, err)
	}

	return nil
}

// FindByID retrieves an item by ID
func (r *CatalogRepository) FindByID(ctx context.Context, kind catalog.ItemKind, id int64) (*catalog.Item, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, table)

	var item catalog.Item
	item.Kind = kind
	err = r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.URL, &item.Description, &item.Category,
		&item.Tags, &item.SubmittedBy, &item.Status, &item.Likes,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", table, err)
	}

	return &item, nil
}

// List retrieves items with filters and pagination
func (r *CatalogRepository) List(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) ([]catalog.Item, int64, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}

	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}
	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filters.Category)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s
		ORDER BY likes DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, itemColumns, table, where, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var item catalog.Item
		item.Kind = kind
		err := rows.Scan(
			&item.ID, &item.Name, &item.URL, &item.Description, &item.Category,
			&item.Tags, &item.SubmittedBy, &item.Status, &item.Likes,
			&item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UpdateStatus moderates a submission
func (r *CatalogRepository) UpdateStatus(ctx context.Context, kind catalog.ItemKind, id int64, status catalog.SubmissionStatus) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = $2 WHERE id = $3`, table),
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes an item
func (r *CatalogRepository) Delete(ctx context.Context, kind catalog.ItemKind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Like inserts the like record and bumps the item's counter in one
// transaction. A second like from the same user hits the partial
// unique index and comes back as xerrors.ErrDuplicateEntry.
func (r *CatalogRepository) Like(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64, userEmail string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	tx, err := r.wrapper.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin like transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var toolID, websiteID interface{}
	if kind == catalog.KindAITool {
		toolID = itemID
	} else {
		websiteID = itemID
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_likes (user_id, user_email, tool_id, website_id)
		VALUES ($1, $2, $3, $4)
	`, userID, userEmail, toolID, websiteID)
	if isUniqueViolation(err, "") {
		return fmt.Errorf("%w: already liked", xerrors.ErrDuplicateEntry)
	}
	if err != nil {
		return fmt.Errorf("failed to create like: %w", err)
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET likes = likes + 1, updated_at = $1 WHERE id = $2`, table),
		time.Now(), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment likes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

// Unlike removes the like record and decrements the counter.
func (r *CatalogRepository) Unlike(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	column := "website_id"
	if kind == catalog.KindAITool {
		column = "tool_id"
	}

	tx, err := r.wrapper.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unlike transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM user_likes WHERE user_id = $1 AND %s = $2`, column),
		userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	_, err = tx.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET likes = GREATEST(likes - 1, 0), updated_at = $1 WHERE id = $2`, table),
		time.Now(), itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement likes: %w", err)
	}

	return tx.Commit(ctx)
}
