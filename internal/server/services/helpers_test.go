package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/siegesync/internal/server/config"
	"github.com/dmitrijs2005/siegesync/internal/server/repositories/kv"
)

var errStoreDown = errors.New("store unavailable")

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	return c
}

// faultyStore wraps a MemoryStore and fails selected calls.
type faultyStore struct {
	*kv.MemoryStore

	getErrKeys map[string]error
	putErr     error
	putErrKeys map[string]error
	listErr    error
	deleteErr  error

	puts int
}

func newFaultyStore(clock *testClock) *faultyStore {
	return &faultyStore{MemoryStore: kv.NewMemoryStoreWithClock(clock.Now)}
}

func (s *faultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err, ok := s.getErrKeys[key]; ok {
		return nil, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func (s *faultyStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	if err, ok := s.putErrKeys[key]; ok {
		return err
	}
	s.puts++
	return s.MemoryStore.Put(ctx, key, value, ttl)
}

func (s *faultyStore) List(ctx context.Context, prefix string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.MemoryStore.List(ctx, prefix)
}

func (s *faultyStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.MemoryStore.Delete(ctx, key)
}

// bulkStore adds DeleteAll to a MemoryStore and records its use.
type bulkStore struct {
	*kv.MemoryStore
	called bool
	err    error
}

func (s *bulkStore) DeleteAll(ctx context.Context) (int64, error) {
	s.called = true
	if s.err != nil {
		return 0, s.err
	}
	keys, _ := s.MemoryStore.List(ctx, "")
	for _, k := range keys {
		_ = s.MemoryStore.Delete(ctx, k)
	}
	return int64(len(keys)), nil
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
