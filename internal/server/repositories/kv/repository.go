// Package kv declares the key-value store contract the services run against
// and provides its backends: in-memory, SQL (PostgreSQL, SQLite) and S3.
package kv

import (
	"context"
	"time"
)

// Store is a flat string-keyed namespace of JSON values with per-key expiry.
type Store interface {
	// Get returns the value for key. Missing or expired keys yield
	// common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value, and sets the
	// expiry to now+ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// List returns the keys starting with prefix in ascending order. An empty
	// prefix lists the whole namespace.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Purger is implemented by backends that need expired keys removed
// physically (the janitor calls it periodically).
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Pinger is implemented by backends that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BulkDeleter is implemented by backends that can drop every key at once.
type BulkDeleter interface {
	DeleteAll(ctx context.Context) (int64, error)
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
