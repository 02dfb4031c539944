package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/coupon"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{db: db}
}

const couponColumns = `id, code, discount_type, discount_value, max_discount_amount,
	       min_order_amount, expires_at, is_active, max_uses, current_uses,
	       created_by, created_at, updated_at`

func scanCoupon(row pgx.Row) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscountAmount,
		&c.MinOrderAmount, &c.ExpiresAt, &c.IsActive, &c.MaxUses, &c.CurrentUses,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan coupon: %w", err)
	}
	return &c, nil
}

// Create inserts a new coupon. Duplicate codes surface as
// xerrors.ErrDuplicateEntry via the unique index on code.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_type, discount_value, max_discount_amount,
		                     min_order_amount, expires_at, is_active, max_uses, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, current_uses, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.Code, c.DiscountType, c.DiscountValue, c.MaxDiscountAmount,
		c.MinOrderAmount, c.ExpiresAt, c.IsActive, c.MaxUses, c.CreatedBy,
	).Scan(&c.ID, &c.CurrentUses, &c.CreatedAt, &c.UpdatedAt)

	if isUniqueViolation(err, "") {
		return fmt.Errorf("%w: coupon code %s", xerrors.ErrDuplicateEntry, c.Code)
	}
	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

// FindByID retrieves a coupon by ID
func (r *CouponRepository) FindByID(ctx context.Context, id int64) (*coupon.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE id = $1`, couponColumns)
	return scanCoupon(r.db.QueryRow(ctx, query, id))
}

// FindActiveByCode retrieves an active coupon by its (uppercase) code
func (r *CouponRepository) FindActiveByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE code = $1 AND is_active = true`, couponColumns)
	return scanCoupon(r.db.QueryRow(ctx, query, code))
}

// List retrieves coupons with filters and pagination
func (r *CouponRepository) List(ctx context.Context, filters *coupon.CouponListFilters) ([]coupon.Coupon, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("code ILIKE $%d", argPos))
		args = append(args, "%"+strings.ToUpper(filters.Search)+"%")
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM coupons WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM coupons
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, couponColumns, where, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []coupon.Coupon
	for rows.Next() {
		var c coupon.Coupon
		err := rows.Scan(
			&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MaxDiscountAmount,
			&c.MinOrderAmount, &c.ExpiresAt, &c.IsActive, &c.MaxUses, &c.CurrentUses,
			&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan coupon row: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return coupons, total, nil
}

// Update rewrites a coupon's editable fields
func (r *CouponRepository) Update(ctx context.Context, id int64, c *coupon.Coupon) error {
	query := `
		UPDATE coupons
		SET discount_value = $1, max_discount_amount = $2, min_order_amount = $3,
		    expires_at = $4, max_uses = $5, updated_at = $6
		WHERE id = $7
	`

	tag, err := r.db.Exec(
		ctx, query,
		c.DiscountValue, c.MaxDiscountAmount, c.MinOrderAmount,
		c.ExpiresAt, c.MaxUses, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetActive flips the active flag
func (r *CouponRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE coupons SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set coupon active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a coupon that has never been used
func (r *CouponRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM coupons WHERE id = $1 AND current_uses = 0`, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either missing or already used; disambiguate for the caller.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return fmt.Errorf("%w: coupon has been used, deactivate instead", xerrors.ErrConflict)
	}

	return nil
}

// IncrementUsesTx bumps current_uses inside an existing transaction,
// refusing to pass the usage cap.
func (r *CouponRepository) IncrementUsesTx(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE coupons
		SET current_uses = current_uses + 1, updated_at = $1
		WHERE id = $2 AND (max_uses IS NULL OR current_uses < max_uses)
	`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment coupon uses: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: coupon usage limit reached", xerrors.ErrConflict)
	}

	return nil
}

// GetStats aggregates coupon counts for the admin dashboard
func (r *CouponRepository) GetStats(ctx context.Context) (*coupon.CouponStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active AND expires_at > NOW()),
		       COALESCE(SUM(current_uses), 0)
		FROM coupons
	`

	var stats coupon.CouponStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalCoupons, &stats.ActiveCoupons, &stats.TotalUses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon stats: %w", err)
	}

	return &stats, nil
}
