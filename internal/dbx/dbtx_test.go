package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupKVTable(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE kv_store (key TEXT PRIMARY KEY, value BLOB NOT NULL, expires_at INTEGER NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO kv_store(key, value, expires_at) VALUES ('Ada', '{}', 1), ('signal_Ada_1_00000000', '{}', 1)`)
	require.NoError(t, err)
	return db
}

func countKeys(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM kv_store`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupKVTable(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM kv_store`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 0, countKeys(t, db), "delete must be committed")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupKVTable(t)
	failure := errors.New("count mismatch")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `DELETE FROM kv_store WHERE key = 'Ada'`)
		require.NoError(t, e)
		return failure
	})
	require.ErrorIs(t, err, failure)
	require.Equal(t, 2, countKeys(t, db), "delete must be rolled back")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupKVTable(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 2, countKeys(t, db), "delete must be rolled back on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `DELETE FROM kv_store`)
		require.NoError(t, e)
		panic("unreachable store")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupKVTable(t)
	require.NoError(t, db.Close())

	called := false
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		in      string
		want    string
	}{
		{
			name:    "postgres numbers placeholders",
			dialect: Postgres,
			in:      `SELECT value FROM kv_store WHERE key = ? AND expires_at > ?`,
			want:    `SELECT value FROM kv_store WHERE key = $1 AND expires_at > $2`,
		},
		{
			name:    "postgres keeps quoted question marks",
			dialect: Postgres,
			in:      `SELECT key FROM kv_store WHERE key LIKE ? ESCAPE '?'`,
			want:    `SELECT key FROM kv_store WHERE key LIKE $1 ESCAPE '?'`,
		},
		{
			name:    "sqlite unchanged",
			dialect: SQLite,
			in:      `DELETE FROM kv_store WHERE key = ?`,
			want:    `DELETE FROM kv_store WHERE key = ?`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Rebind(tt.dialect, tt.in))
		})
	}
}
