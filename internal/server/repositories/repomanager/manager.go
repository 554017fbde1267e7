// Package repomanager opens the configured key-value backend, runs its schema
// migrations and hands the resulting kv.Store to the services.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/siegesync/internal/server/config"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

// Backend names accepted in config.StoreBackend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

// RepositoryManager owns a store backend for the lifetime of the app.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Store() kv.Store
	Close() error
}

// New builds the manager for cfg.StoreBackend and runs its migrations.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch cfg.StoreBackend {
	case BackendMemory, "":
		m = NewInMemoryRepositoryManager()
	case BackendPostgres:
		m, err = NewPostgresRepositoryManager(cfg.DatabaseDSN)
	case BackendSQLite:
		m, err = NewSQLiteRepositoryManager(cfg.SQLitePath)
	case BackendS3:
		m, err = NewS3RepositoryManager(ctx, kv.S3Settings{
			User:         cfg.S3RootUser,
			Password:     cfg.S3RootPassword,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return m, nil
}

// InMemoryRepositoryManager serves a process-local MemoryStore.
type InMemoryRepositoryManager struct {
	store *kv.MemoryStore
}

// NewInMemoryRepositoryManager returns a manager around a fresh MemoryStore.
func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: kv.NewMemoryStore()}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *InMemoryRepositoryManager) Store() kv.Store                         { return m.store }
func (m *InMemoryRepositoryManager) Close() error                            { return nil }

// S3RepositoryManager serves an S3Store over a bucket.
type S3RepositoryManager struct {
	store *kv.S3Store
}

// NewS3RepositoryManager connects to the bucket described by st.
func NewS3RepositoryManager(ctx context.Context, st kv.S3Settings) (*S3RepositoryManager, error) {
	client, err := kv.NewS3Client(ctx, st)
	if err != nil {
		return nil, err
	}
	return &S3RepositoryManager{store: kv.NewS3Store(client, st.Bucket)}, nil
}

func (m *S3RepositoryManager) RunMigrations(ctx context.Context) error { return nil }
func (m *S3RepositoryManager) Store() kv.Store                         { return m.store }
func (m *S3RepositoryManager) Close() error                            { return nil }
