package engine

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"testing/fstest"

	"wishlist-trader/internal/broker/brokertest"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/store"
	"wishlist-trader/internal/tradelog"
	"wishlist-trader/internal/types"
	"wishlist-trader/internal/wishlist"
)

func testConfig() *store.Config {
	cfg := &store.Config{Mode: store.ModeDryRun, PollIntervalMs: 1000}
	cfg.Exchanges.Quote = []string{"NSE", "NFO"}
	cfg.Exchanges.Catalog = []string{"NSE", "NFO"}
	return cfg
}

type journalRecorder struct {
	mu      sync.Mutex
	entries []tradelog.Entry
}

func (j *journalRecorder) append(e tradelog.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *journalRecorder) all() []tradelog.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]tradelog.Entry(nil), j.entries...)
}

type fixture struct {
	engine  *Engine
	broker  *brokertest.Fake
	prices  *prices.Map
	fsys    fstest.MapFS
	journal *journalRecorder
}

func newFixture(t *testing.T, fsys fstest.MapFS, ticker *fakeTicker) *fixture {
	t.Helper()
	if fsys == nil {
		fsys = fstest.MapFS{}
	}
	brk := brokertest.New()
	pm := prices.NewMap()
	loader := wishlist.NewLoader(fsys, store.WishlistSlots, "wishlist_tab_%d.json")

	var eng *Engine
	if ticker != nil {
		eng = newEngine(testConfig(), brk, loader, pm, ticker)
	} else {
		eng = newEngine(testConfig(), brk, loader, pm, nil)
	}

	j := &journalRecorder{}
	eng.executor.journal = j.append
	return &fixture{engine: eng, broker: brk, prices: pm, fsys: fsys, journal: j}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	t.Cleanup(func() {
		_ = logger.InitWithConfig(logger.LogConfig{Level: "INFO", Format: "text"})
	})
	return &buf
}

type fakeTicker struct {
	mu         sync.Mutex
	startErr   error
	subscribed []types.Instrument
}

func (f *fakeTicker) Start(ctx context.Context) error { return f.startErr }

func (f *fakeTicker) Stop(ctx context.Context) {}

func (f *fakeTicker) Subscribe(ctx context.Context, instruments []types.Instrument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, instruments...)
	return nil
}

func (f *fakeTicker) got() []types.Instrument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Instrument(nil), f.subscribed...)
}
