package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toolhub-service/internal/domain/user"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, photo, plan, plan_expiry, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Photo, &u.Plan, &u.PlanExpiry,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Upsert syncs the provider-supplied profile on first sight and keeps
// name/photo fresh on later logins. The identity id is authoritative.
func (r *UserRepository) Upsert(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, email, name, photo)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name,
		              photo = EXCLUDED.photo, updated_at = NOW()
		RETURNING plan, plan_expiry, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		u.ID, u.Email, u.Name, u.Photo,
	).Scan(&u.Plan, &u.PlanExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by identity id
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// UpdatePlan writes the purchased plan and its expiry onto the profile
func (r *UserRepository) UpdatePlan(ctx context.Context, id int64, planName string, expiry sql.NullTime) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET plan = $1, plan_expiry = $2, updated_at = $3 WHERE id = $4
	`, planName, expiry, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ListIDs returns every user's id and email, used for notification fan-out
func (r *UserRepository) ListIDs(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
