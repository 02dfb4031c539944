package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"toolhub-service/internal/domain/plan"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `id, name, description, features, price, currency, duration,
	       is_active, is_popular, sort_order, created_at, updated_at`

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var p plan.Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Features, &p.Price, &p.Currency,
		&p.Duration, &p.IsActive, &p.IsPopular, &p.SortOrder,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan plan: %w", err)
	}
	return &p, nil
}

// Create inserts a new plan
func (r *PlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO plans (name, description, features, price, currency, duration,
		                   is_active, is_popular, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.Name, p.Description, p.Features, p.Price, p.Currency, p.Duration,
		p.IsActive, p.IsPopular, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

// FindByID retrieves a plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*plan.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns)
	return scanPlan(r.db.QueryRow(ctx, query, id))
}

// ListActive retrieves active plans ordered for display
func (r *PlanRepository) ListActive(ctx context.Context) ([]plan.Plan, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM plans
		WHERE is_active = true
		ORDER BY sort_order ASC, price ASC
	`, planColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	defer rows.Close()

	return collectPlans(rows)
}

// List retrieves plans with filters and pagination
func (r *PlanRepository) List(ctx context.Context, filters *plan.PlanListFilters) ([]plan.Plan, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *filters.IsActive)
		argPos++
	}
	if filters.Currency != "" {
		conditions = append(conditions, fmt.Sprintf("currency = $%d", argPos))
		args = append(args, strings.ToUpper(filters.Currency))
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM plans WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count plans: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM plans
		WHERE %s
		ORDER BY sort_order ASC, price ASC
		LIMIT $%d OFFSET $%d
	`, planColumns, where, argPos, argPos+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	plans, err := collectPlans(rows)
	if err != nil {
		return nil, 0, err
	}

	return plans, total, nil
}

// Update rewrites a plan's editable fields
func (r *PlanRepository) Update(ctx context.Context, id int64, p *plan.Plan) error {
	query := `
		UPDATE plans
		SET name = $1, description = $2, features = $3, price = $4,
		    currency = $5, duration = $6, is_popular = $7, sort_order = $8,
		    updated_at = $9
		WHERE id = $10
	`

	tag, err := r.db.Exec(
		ctx, query,
		p.Name, p.Description, p.Features, p.Price,
		p.Currency, p.Duration, p.IsPopular, p.SortOrder,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetActive flips the active flag (soft activate/deactivate)
func (r *PlanRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE plans SET is_active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set plan active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Delete removes a plan. Fails if any order references it.
func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	var orders int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE plan_id = $1`, id,
	).Scan(&orders); err != nil {
		return fmt.Errorf("failed to count plan orders: %w", err)
	}
	if orders > 0 {
		return fmt.Errorf("%w: plan has %d orders, deactivate instead", xerrors.ErrConflict, orders)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// GetStats aggregates plan counts for the admin dashboard
func (r *PlanRepository) GetStats(ctx context.Context) (*plan.PlanStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE NOT is_active),
		       COALESCE(AVG(price), 0)
		FROM plans
	`

	var stats plan.PlanStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalPlans, &stats.ActivePlans, &stats.InactivePlans, &stats.AveragePrice,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan stats: %w", err)
	}

	return &stats, nil
}

func collectPlans(rows pgx.Rows) ([]plan.Plan, error) {
	var plans []plan.Plan
	for rows.Next() {
		var p plan.Plan
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Features, &p.Price, &p.Currency,
			&p.Duration, &p.IsActive, &p.IsPopular, &p.SortOrder,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}
