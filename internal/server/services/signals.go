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

// signalSuffixBytes is the random suffix size; it renders as 8 hex chars.
const signalSuffixBytes = 4

// Signals relays directed notifications between users.
type Signals struct {
	store      kv.Store
	logger     logging.Logger
	signalTTL  time.Duration
	now        func() time.Time
	randSuffix func() (string, error)
}

// NewSignals constructs a Signals service using the signal TTL from cfg.
func NewSignals(store kv.Store, cfg *config.Config, logger logging.Logger) *Signals {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Signals{
		store:      store,
		logger:     logger.With("module", "signals"),
		signalTTL:  cfg.SignalTTL,
		now:        time.Now,
		randSuffix: func() (string, error) { return common.MakeRandHexString(signalSuffixBytes) },
	}
}

// WithClock replaces the clock used for signal timestamps.
func (s *Signals) WithClock(now func() time.Time) *Signals {
	s.now = now
	return s
}

// Send stores an unread signal from one user to another. The timestamp is
// taken from the server clock.
func (s *Signals) Send(ctx context.Context, from, to, signalType string) (*models.SignalRecord, error) {
	if from == "" || to == "" || signalType == "" {
		return nil, fmt.Errorf("%w: from, to and type are required", common.ErrorValidation)
	}
	if from == to {
		return nil, fmt.Errorf("%w: cannot send a signal to yourself", common.ErrorValidation)
	}

	suffix, err := s.randSuffix()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	rec := models.SignalRecord{
		From:      from,
		To:        to,
		Type:      signalType,
		Timestamp: s.now().UnixMilli(),
		Read:      false,
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	key := models.SignalKey(to, rec.Timestamp, suffix)
	if err := s.store.Put(ctx, key, value, s.signalTTL); err != nil {
		return nil, err
	}

	rec.ID = key
	return &rec, nil
}

// List returns the signals addressed to username, newest first, each
// carrying its store key as ID.
func (s *Signals) List(ctx context.Context, username string) ([]models.SignalRecord, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	keys, err := s.store.List(ctx, models.SignalInboxPrefix(username))
	if err != nil {
		return nil, err
	}

	out := make([]models.SignalRecord, 0, len(keys))
	for _, key := range keys {
		value, err := s.store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				s.logger.Warn(ctx, "signals: skipping unreadable key", "key", key, "error", err)
			}
			continue
		}

		var rec models.SignalRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			s.logger.Debug(ctx, "signals: skipping undecodable value", "key", key)
			continue
		}
		rec.ID = key
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// MarkRead sets read=true on every listed signal that still exists and
// refreshes its TTL. Other fields are written back untouched. Missing ids
// and store failures are skipped; the call itself never fails.
func (s *Signals) MarkRead(ctx context.Context, ids []string) {
	for _, id := range ids {
		if id == "" {
			continue
		}

		value, err := s.store.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, common.ErrorNotFound) {
				s.logger.Warn(ctx, "mark read: get failed", "id", id, "error", err)
			}
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(value, &obj); err != nil || obj == nil {
			continue
		}
		obj["read"] = true

		updated, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		if err := s.store.Put(ctx, id, updated, s.signalTTL); err != nil {
			s.logger.Warn(ctx, "mark read: put failed", "id", id, "error", err)
		}
	}
}
