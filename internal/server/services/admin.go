package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/common"
	"github.com/dmitrijs2005/siegesync/internal/logging"
	"github.com/dmitrijs2005/siegesync/internal/server/config"
	"github.com/dmitrijs2005/siegesync/internal/server/models"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

type fixtureUser struct {
	name  string
	coins float64
	hours float64
}

var fixtureUsers = []fixtureUser{
	{name: "TestPlayer1", coins: 5000, hours: 50},
	{name: "TestPlayer2", coins: 3500, hours: 35},
	{name: "TestPlayer3", coins: 2200, hours: 22},
	{name: "TestPlayer4", coins: 1200, hours: 12},
	{name: "TestPlayer5", coins: 600, hours: 6},
}

var fixtureSignalTypes = []string{"poke", "cheer", "gift", "boost", "wave"}

// PopulateResult reports how many fixture records were written.
type PopulateResult struct {
	TestUsers   int `json:"testUsers"`
	TestSignals int `json:"testSignals"`
}

// Admin implements the development-only fixture and wipe operations.
type Admin struct {
	store   kv.Store
	signals *Signals
	logger  logging.Logger
	userTTL time.Duration
	now     func() time.Time
}

// NewAdmin constructs an Admin. Signals are seeded through signals so they
// get the same keys and TTL as real sends.
func NewAdmin(store kv.Store, signals *Signals, cfg *config.Config, logger logging.Logger) *Admin {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Admin{
		store:   store,
		signals: signals,
		logger:  logger.With("module", "admin"),
		userTTL: cfg.UserTTL,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for fixture timestamps.
func (a *Admin) WithClock(now func() time.Time) *Admin {
	a.now = now
	return a
}

// Populate writes the fixture users and one signal from each of them to
// username.
func (a *Admin) Populate(ctx context.Context, username string) (*PopulateResult, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	now := a.now()
	res := &PopulateResult{}

	for i, fu := range fixtureUsers {
		hours := fu.hours
		rec := models.UserRecord{
			Username:    fu.name,
			Coins:       fu.coins,
			Hours:       &hours,
			LastUpdated: now.Add(-time.Duration(i) * time.Hour).UnixMilli(),
		}
		value, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		if err := a.store.Put(ctx, rec.Username, value, a.userTTL); err != nil {
			return nil, err
		}
		res.TestUsers++
	}

	for i, fu := range fixtureUsers {
		if fu.name == username {
			continue
		}
		if _, err := a.signals.Send(ctx, fu.name, username, fixtureSignalTypes[i%len(fixtureSignalTypes)]); err != nil {
			return nil, err
		}
		res.TestSignals++
	}

	a.logger.Info(ctx, "fixtures populated", "username", username, "users", res.TestUsers, "signals", res.TestSignals)
	return res, nil
}

// Clear deletes every key in the store and returns how many were removed.
func (a *Admin) Clear(ctx context.Context) (int, error) {
	if bd, ok := a.store.(kv.BulkDeleter); ok {
		n, err := bd.DeleteAll(ctx)
		if err != nil {
			return 0, err
		}
		a.logger.Warn(ctx, "store cleared", "count", n)
		return int(n), nil
	}

	keys, err := a.store.List(ctx, "")
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if err := a.store.Delete(ctx, key); err != nil {
			return 0, err
		}
	}

	a.logger.Warn(ctx, "store cleared", "count", len(keys))
	return len(keys), nil
}
