package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

type countingPurger struct {
	calls atomic.Int64
	err   error
}

func (p *countingPurger) Purge(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, p.err
}

func runFor(t *testing.T, j *Janitor, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(d + 2*time.Second):
		t.Fatal("janitor did not stop after context cancel")
	}
}

func TestJanitor_PurgesOnTick(t *testing.T) {
	p := &countingPurger{}
	runFor(t, New(p, 10*time.Millisecond, logging.Nop()), 200*time.Millisecond)
	assert.GreaterOrEqual(t, p.calls.Load(), int64(2))
}

func TestJanitor_KeepsGoingAfterErrors(t *testing.T) {
	p := &countingPurger{err: errors.New("db error: locked")}
	runFor(t, New(p, 10*time.Millisecond, logging.Nop()), 200*time.Millisecond)
	assert.GreaterOrEqual(t, p.calls.Load(), int64(2))
}

func TestJanitor_DisabledInterval(t *testing.T) {
	p := &countingPurger{}
	runFor(t, New(p, 0, logging.Nop()), 50*time.Millisecond)
	assert.Equal(t, int64(0), p.calls.Load())
}

func TestJanitor_RemovesExpiredMemoryKeys(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	store := kv.NewMemoryStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "gone", []byte(`{}`), -time.Second))
	require.NoError(t, store.Put(ctx, "kept", []byte(`{}`), time.Hour))

	New(store, time.Minute, logging.Nop()).purgeOnce(ctx)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "first purge already removed the expired key")

	_, err = store.Get(ctx, "kept")
	assert.NoError(t, err)
}
