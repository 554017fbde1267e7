package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/siegesync/internal/dbx"
	"github.com/dmitrijs2005/siegesync/internal/filex"
	"github.com/dmitrijs2005/siegesync/internal/server/migrations"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

// SQLRepositoryManager serves an SQLStore over PostgreSQL (pgx) or SQLite
// (modernc) and migrates the kv_store table with goose.
type SQLRepositoryManager struct {
	db      *sql.DB
	dialect dbx.Dialect
	store   *kv.SQLStore
}

// sqlOpen is a seam for testing sql.Open.
var sqlOpen = sql.Open

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewPostgresRepositoryManager opens dsn with the pgx stdlib driver.
func NewPostgresRepositoryManager(dsn string) (*SQLRepositoryManager, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return newSQLRepositoryManager(db, dbx.Postgres), nil
}

// NewSQLiteRepositoryManager opens the SQLite file at path.
func NewSQLiteRepositoryManager(path string) (*SQLRepositoryManager, error) {
	if err := filex.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	db, err := sqlOpen("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return newSQLRepositoryManager(db, dbx.SQLite), nil
}

func newSQLRepositoryManager(db *sql.DB, d dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{db: db, dialect: d, store: kv.NewSQLStore(db, d)}
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	dialect, dir := "pgx", migrations.PostgresDir
	if m.dialect == dbx.SQLite {
		dialect, dir = "sqlite3", migrations.SQLiteDir
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, dir); err != nil {
		return err
	}
	return nil
}

func (m *SQLRepositoryManager) Store() kv.Store { return m.store }

func (m *SQLRepositoryManager) Close() error { return m.db.Close() }
