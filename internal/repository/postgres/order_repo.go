package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/order"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db         *pgxpool.Pool
	couponRepo *CouponRepository
	wrapper    *DB
}

func NewOrderRepository(db *pgxpool.Pool, couponRepo *CouponRepository, wrapper *DB) *OrderRepository {
	return &OrderRepository{db: db, couponRepo: couponRepo, wrapper: wrapper}
}

const orderColumns = `id, order_reference, user_id, plan_id, plan_name,
	       original_amount, discount_amount, final_amount,
	       coupon_id, coupon_code, payment_method,
	       gateway_order_id, gateway_payment_id, status,
	       plan_activation_date, plan_expiry_date, created_at, updated_at`

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.OrderReference, &o.UserID, &o.PlanID, &o.PlanName,
		&o.OriginalAmount, &o.DiscountAmount, &o.FinalAmount,
		&o.CouponID, &o.CouponCode, &o.PaymentMethod,
		&o.GatewayOrderID, &o.GatewayPaymentID, &o.Status,
		&o.PlanActivationDate, &o.PlanExpiryDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &o, nil
}

// Create persists an order. When the order carries a coupon, the
// coupon's usage counter is bumped in the same transaction so the two
// writes cannot drift apart.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.wrapper.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_reference, user_id, plan_id, plan_name,
		                    original_amount, discount_amount, final_amount,
		                    coupon_id, coupon_code, payment_method,
		                    gateway_order_id, status,
		                    plan_activation_date, plan_expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(
		ctx, query,
		o.OrderReference, o.UserID, o.PlanID, o.PlanName,
		o.OriginalAmount, o.DiscountAmount, o.FinalAmount,
		o.CouponID, o.CouponCode, o.PaymentMethod,
		o.GatewayOrderID, o.Status,
		o.PlanActivationDate, o.PlanExpiryDate,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	if o.CouponID.Valid {
		if err := r.couponRepo.IncrementUsesTx(ctx, tx, o.CouponID.Int64); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindByID retrieves an order by ID
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

// FindByGatewayOrderID retrieves an order by the remote gateway order id
func (r *OrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*order.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE gateway_order_id = $1`, orderColumns)
	return scanOrder(r.db.QueryRow(ctx, query, gatewayOrderID))
}

// ListByUser retrieves a user's orders with filters and pagination
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, filters *order.OrderListFilters) ([]order.Order, int64, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argPos := 2

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		var o order.Order
		err := rows.Scan(
			&o.ID, &o.OrderReference, &o.UserID, &o.PlanID, &o.PlanName,
			&o.OriginalAmount, &o.DiscountAmount, &o.FinalAmount,
			&o.CouponID, &o.CouponCode, &o.PaymentMethod,
			&o.GatewayOrderID, &o.GatewayPaymentID, &o.Status,
			&o.PlanActivationDate, &o.PlanExpiryDate, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// MarkVerified transitions a pending order to its final state and
// stores the gateway payment id. Re-verifying an already settled
// payment is a no-op thanks to the status guard.
func (r *OrderRepository) MarkVerified(ctx context.Context, id int64, status order.Status, gatewayPaymentID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $1, gateway_payment_id = $2, updated_at = $3
		WHERE id = $4 AND status = 'pending'
	`, status, gatewayPaymentID, time.Now(), id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: gateway payment already recorded", xerrors.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order is not pending", xerrors.ErrConflict)
	}

	return nil
}

// RecordPaymentAttempt logs every verification attempt before the
// result is reported back to the caller.
func (r *OrderRepository) RecordPaymentAttempt(ctx context.Context, a *order.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (order_id, gateway_order_id, gateway_payment_id, verified)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		a.OrderID, a.GatewayOrderID, a.GatewayPaymentID, a.Verified,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record payment attempt: %w", err)
	}

	return nil
}

// GetStats aggregates order counts and revenue
func (r *OrderRepository) GetStats(ctx context.Context) (*order.OrderStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'success'),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COALESCE(SUM(final_amount) FILTER (WHERE status = 'success'), 0)
		FROM orders
	`

	var stats order.OrderStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalOrders, &stats.SuccessfulOrders,
		&stats.PendingOrders, &stats.FailedOrders, &stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}

	return &stats, nil
}
