package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/siegesync/internal/common"
	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

func newTestAdmin(clock *testClock, store kv.Store) (*Admin, *Board, *Signals) {
	cfg := testConfig()
	signals := NewSignals(store, cfg, logging.Nop()).WithClock(clock.Now)
	board := NewBoard(store, cfg, logging.Nop()).WithClock(clock.Now)
	return NewAdmin(store, signals, cfg, logging.Nop()).WithClock(clock.Now), board, signals
}

func TestAdmin_Populate(t *testing.T) {
	clock := newTestClock()
	admin, board, signals := newTestAdmin(clock, newFaultyStore(clock))
	ctx := context.Background()

	res, err := admin.Populate(ctx, "Ada")
	require.NoError(t, err)
	assert.Equal(t, &PopulateResult{TestUsers: 5, TestSignals: 5}, res)

	lb, err := board.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, lb, 5)
	assert.Equal(t, "TestPlayer1", lb[0].Username)
	for i := 1; i < len(lb); i++ {
		assert.Greater(t, lb[i-1].Coins, lb[i].Coins)
	}

	inbox, err := signals.List(ctx, "Ada")
	require.NoError(t, err)
	require.Len(t, inbox, 5)

	types := map[string]bool{}
	for _, s := range inbox {
		types[s.Type] = true
		assert.False(t, s.Read)
		assert.Equal(t, "Ada", s.To)
	}
	assert.Len(t, types, 5)
}

func TestAdmin_Populate_FixtureRecipientSkipsSelfSignal(t *testing.T) {
	clock := newTestClock()
	admin, _, _ := newTestAdmin(clock, newFaultyStore(clock))

	res, err := admin.Populate(context.Background(), "TestPlayer3")
	require.NoError(t, err)
	assert.Equal(t, 5, res.TestUsers)
	assert.Equal(t, 4, res.TestSignals)
}

func TestAdmin_Populate_Errors(t *testing.T) {
	clock := newTestClock()
	store := newFaultyStore(clock)
	admin, _, _ := newTestAdmin(clock, store)

	_, err := admin.Populate(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorValidation)

	store.putErr = errStoreDown
	_, err = admin.Populate(context.Background(), "Ada")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestAdmin_Clear_ListAndDelete(t *testing.T) {
	clock := newTestClock()
	store := newFaultyStore(clock)
	admin, _, _ := newTestAdmin(clock, store)
	ctx := context.Background()

	_, err := admin.Populate(ctx, "Ada")
	require.NoError(t, err)

	n, err := admin.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAdmin_Clear_UsesBulkDeleter(t *testing.T) {
	clock := newTestClock()
	store := &bulkStore{MemoryStore: kv.NewMemoryStoreWithClock(clock.Now)}
	admin, _, _ := newTestAdmin(clock, store)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte(`{}`), time.Hour))
	require.NoError(t, store.Put(ctx, "b", []byte(`{}`), time.Hour))

	n, err := admin.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, store.called)
	assert.Equal(t, 2, n)

	store.err = errStoreDown
	_, err = admin.Clear(ctx)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestAdmin_Clear_Errors(t *testing.T) {
	clock := newTestClock()
	store := newFaultyStore(clock)
	admin, _, _ := newTestAdmin(clock, store)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte(`{}`), time.Hour))

	store.deleteErr = errStoreDown
	_, err := admin.Clear(ctx)
	require.ErrorIs(t, err, errStoreDown)

	store.deleteErr = nil
	store.listErr = errStoreDown
	_, err = admin.Clear(ctx)
	assert.ErrorIs(t, err, errStoreDown)
}
