// Package services contains server-side business logic: progress sync and
// the leaderboard (Board), directed signals (Signals) and the diagnostic
// fixture and wipe operations (Admin). All state lives in a kv.Store.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/common"
	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/config"
	"github.com/dmitrijs2005/siegesync/internal/server/models"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

// SyncRequest is a user snapshot as received from a client, and the shape
// stored records are decoded into. Pointer fields tell an absent value from
// a zero one.
type SyncRequest struct {
	Username    string   `json:"username"`
	Coins       *float64 `json:"coins"`
	Hours       *float64 `json:"hours,omitempty"`
	LastUpdated *int64   `json:"lastUpdated"`
}

func (r SyncRequest) record() models.UserRecord {
	return models.UserRecord{
		Username:    r.Username,
		Coins:       *r.Coins,
		Hours:       r.Hours,
		LastUpdated: *r.LastUpdated,
	}
}

// Board stores user snapshots and builds the leaderboard from them.
type Board struct {
	store        kv.Store
	logger       logging.Logger
	userTTL      time.Duration
	activeWindow time.Duration
	now          func() time.Time
}

// NewBoard constructs a Board using the TTL and activity window from cfg.
func NewBoard(store kv.Store, cfg *config.Config, logger logging.Logger) *Board {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Board{
		store:        store,
		logger:       logger.With("module", "board"),
		userTTL:      cfg.UserTTL,
		activeWindow: cfg.ActiveWindow,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for activity filtering.
func (b *Board) WithClock(now func() time.Time) *Board {
	b.now = now
	return b
}

// Sync validates the snapshot and stores it under its username, replacing
// any previous record. A zero coins or lastUpdated value counts as missing.
func (b *Board) Sync(ctx context.Context, req SyncRequest) error {
	if req.Username == "" || req.Coins == nil || *req.Coins == 0 || req.LastUpdated == nil || *req.LastUpdated == 0 {
		return fmt.Errorf("%w: username, coins and lastUpdated are required", common.ErrorValidation)
	}

	rec := req.record()
	value, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := b.store.Put(ctx, rec.Username, value, b.userTTL); err != nil {
		return err
	}
	b.logger.Debug(ctx, "snapshot stored", "username", rec.Username)
	return nil
}

// Leaderboard returns active user records sorted by coins, highest first.
// Unreadable, incomplete and stale records are skipped one by one; only a
// failed key listing fails the call.
func (b *Board) Leaderboard(ctx context.Context) ([]models.UserRecord, error) {
	keys, err := b.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	cutoff := b.now().UnixMilli() - b.activeWindow.Milliseconds()
	out := make([]models.UserRecord, 0, len(keys))

	for _, key := range keys {
		if models.IsSignalKey(key) {
			continue
		}

		value, err := b.store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				b.logger.Warn(ctx, "leaderboard: skipping unreadable key", "key", key, "error", err)
			}
			continue
		}

		var u SyncRequest
		if err := json.Unmarshal(value, &u); err != nil {
			b.logger.Debug(ctx, "leaderboard: skipping undecodable value", "key", key)
			continue
		}
		if u.Username == "" || u.Coins == nil || u.LastUpdated == nil || *u.LastUpdated == 0 {
			continue
		}
		if *u.LastUpdated <= cutoff {
			continue
		}

		out = append(out, u.record())
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Coins > out[j].Coins })
	return out, nil
}
