package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/siegesync/internal/common"
	"github.com/dmitrijs2005/siegesync/internal/dbx"
)

const (
	getQuery = `SELECT value FROM kv_store WHERE key = ? AND expires_at > ?`

	putQuery = `
		INSERT INTO kv_store (key, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key)
		DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	// substr instead of LIKE: SQLite's LIKE is case-insensitive and "_" is a
	// wildcard, both wrong for "signal_{user}_" prefixes.
	listQuery = `SELECT key FROM kv_store WHERE substr(key, 1, ?) = ? AND expires_at > ? ORDER BY key`

	deleteQuery = `DELETE FROM kv_store WHERE key = ?`

	purgeQuery = `DELETE FROM kv_store WHERE expires_at <= ?`

	countLiveQuery = `SELECT COUNT(*) FROM kv_store WHERE expires_at > ?`

	deleteAllQuery = `DELETE FROM kv_store`
)

// SQLStore keeps the namespace in the kv_store table. The same queries run on
// PostgreSQL (pgx) and SQLite; only placeholders differ. Expiry is an epoch
// millisecond column compared against the caller's clock.
type SQLStore struct {
	db      *sql.DB
	conn    dbx.DBTX
	dialect dbx.Dialect
	now     func() time.Time
}

// NewSQLStore binds a store to db. The schema must already be migrated.
func NewSQLStore(db *sql.DB, dialect dbx.Dialect) *SQLStore {
	return &SQLStore{db: db, conn: db, dialect: dialect, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	s.now = now
	return s
}

func (s *SQLStore) q(query string) string {
	return dbx.Rebind(s.dialect, query)
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRowContext(ctx, s.q(getQuery), key, s.now().UnixMilli()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	_, err := s.conn.ExecContext(ctx, s.q(putQuery), key, string(value), now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *SQLStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(listQuery), utf8.RuneCountInString(prefix), prefix, s.now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.conn.ExecContext(ctx, s.q(deleteQuery), key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Purge deletes expired rows.
func (s *SQLStore) Purge(ctx context.Context) (int64, error) {
	res, err := s.conn.ExecContext(ctx, s.q(purgeQuery), s.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// DeleteAll empties the table in one transaction and returns how many live
// keys were dropped. Expired leftovers go too but are not counted.
func (s *SQLStore) DeleteAll(ctx context.Context) (int64, error) {
	var live int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tx.QueryRowContext(ctx, s.q(countLiveQuery), s.now().UnixMilli()).Scan(&live); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteAllQuery); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return live, nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
