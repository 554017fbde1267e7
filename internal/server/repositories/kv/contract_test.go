package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/siegesync/internal/common"
)

// fakeClock is a settable clock shared by a store and its test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// runStoreContract checks the behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T, now func() time.Time) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing is not found", func(t *testing.T) {
		s := newStore(t, newFakeClock().Now)
		_, err := s.Get(ctx, "nobody")
		require.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
	})

	t.Run("put then get, overwrite wins", func(t *testing.T) {
		s := newStore(t, newFakeClock().Now)
		require.NoError(t, s.Put(ctx, "Ada", []byte(`{"coins":1}`), time.Hour))
		require.NoError(t, s.Put(ctx, "Ada", []byte(`{"coins":2}`), time.Hour))

		got, err := s.Get(ctx, "Ada")
		require.NoError(t, err)
		assert.JSONEq(t, `{"coins":2}`, string(got))
	})

	t.Run("expired keys read as missing and are not listed", func(t *testing.T) {
		clock := newFakeClock()
		s := newStore(t, clock.Now)
		require.NoError(t, s.Put(ctx, "short", []byte(`{}`), time.Minute))
		require.NoError(t, s.Put(ctx, "long", []byte(`{}`), time.Hour))

		clock.Advance(time.Minute)

		_, err := s.Get(ctx, "short")
		require.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)

		keys, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"long"}, keys)
	})

	t.Run("list by prefix is literal and sorted", func(t *testing.T) {
		s := newStore(t, newFakeClock().Now)
		for _, k := range []string{"signal_Bob_2_b", "signal_Bob_1_a", "signalXBob", "signal_bob_1_c", "Bob"} {
			require.NoError(t, s.Put(ctx, k, []byte(`{}`), time.Hour))
		}

		keys, err := s.List(ctx, "signal_Bob_")
		require.NoError(t, err)
		assert.Equal(t, []string{"signal_Bob_1_a", "signal_Bob_2_b"}, keys)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t, newFakeClock().Now)
		require.NoError(t, s.Put(ctx, "Ada", []byte(`{}`), time.Hour))
		require.NoError(t, s.Delete(ctx, "Ada"))
		require.NoError(t, s.Delete(ctx, "Ada"))

		_, err := s.Get(ctx, "Ada")
		require.True(t, errors.Is(err, common.ErrorNotFound), "got %v", err)
	})

	t.Run("purge removes only expired keys", func(t *testing.T) {
		clock := newFakeClock()
		s := newStore(t, clock.Now)
		p, ok := s.(Purger)
		if !ok {
			t.Skip("backend does not purge")
		}
		require.NoError(t, s.Put(ctx, "a", []byte(`{}`), time.Minute))
		require.NoError(t, s.Put(ctx, "b", []byte(`{}`), time.Minute))
		require.NoError(t, s.Put(ctx, "c", []byte(`{}`), time.Hour))

		clock.Advance(2 * time.Minute)

		n, err := p.Purge(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = s.Get(ctx, "c")
		require.NoError(t, err)
	})
}
