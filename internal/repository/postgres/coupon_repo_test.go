package postgres

import (
	"context"
	"testing"

	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []any
}

// fakeTx satisfies pgx.Tx for exercising transactional statements
// without a database. Only Exec records anything.
type fakeTx struct {
	tag   pgconn.CommandTag
	err   error
	execs []execCall
}

func (f *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.tag, f.err
}

func (f *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return f, nil }
func (f *fakeTx) Commit(ctx context.Context) error          { return nil }
func (f *fakeTx) Rollback(ctx context.Context) error        { return nil }
func (f *fakeTx) Conn() *pgx.Conn                           { return nil }
func (f *fakeTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }
func (f *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (f *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (f *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (f *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func TestIncrementUsesTx(t *testing.T) {
	ctx := context.Background()
	repo := NewCouponRepository(nil)

	t.Run("bumps the counter by exactly one", func(t *testing.T) {
		tx := &fakeTx{tag: pgconn.NewCommandTag("UPDATE 1")}

		require.NoError(t, repo.IncrementUsesTx(ctx, tx, 42))

		require.Len(t, tx.execs, 1)
		assert.Contains(t, tx.execs[0].sql, "current_uses + 1")
		assert.Equal(t, int64(42), tx.execs[0].args[1])
	})

	t.Run("guards the usage cap in the statement itself", func(t *testing.T) {
		tx := &fakeTx{tag: pgconn.NewCommandTag("UPDATE 1")}

		require.NoError(t, repo.IncrementUsesTx(ctx, tx, 42))

		// The cap check rides on the UPDATE, not a prior read
		assert.Contains(t, tx.execs[0].sql, "max_uses IS NULL OR current_uses < max_uses")
	})

	t.Run("refuses once the cap is consumed", func(t *testing.T) {
		tx := &fakeTx{tag: pgconn.NewCommandTag("UPDATE 0")}

		err := repo.IncrementUsesTx(ctx, tx, 42)
		assert.ErrorIs(t, err, xerrors.ErrConflict)
	})
}
