package engine

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"wishlist-trader/internal/broker/brokertest"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/store"
	"wishlist-trader/internal/types"
	"wishlist-trader/internal/wishlist"
)

func seedCatalog(f *fixture) {
	f.broker.SetInstruments("NSE", []types.Instrument{
		{Exchange: "NSE", Symbol: "RELIANCE", Token: 738561},
		{Exchange: "NSE", Symbol: "TATAMOTORS", Token: 884737},
	})
	f.broker.SetInstruments("NFO", []types.Instrument{})
}

func TestEngineScenario(t *testing.T) {
	f := newFixture(t, fstest.MapFS{"wishlist_tab_1.json": listFile(`["RELIANCE","TATAMOTORS"]`)}, nil)
	seedCatalog(f)
	f.broker.SetQuote("NSE:RELIANCE", 2500.0)
	f.broker.Fail("NSE:TATAMOTORS", errFetch)
	ctx := context.Background()

	if err := f.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := len(f.engine.Catalog()); got != 2 {
		t.Errorf("Expected 2 catalog symbols, got %d", got)
	}

	f.engine.poller.Cycle(ctx)

	if _, err := f.engine.PlaceOrder(ctx, "TATAMOTORS", 1, "BUY"); !errors.Is(err, ErrNoPrice) {
		t.Errorf("Expected lookup error for TATAMOTORS, got %v", err)
	}

	resp, err := f.engine.PlaceOrder(ctx, "RELIANCE", 1, "BUY")
	if err != nil {
		t.Fatalf("Expected RELIANCE order to succeed, got %v", err)
	}
	if resp.OrderID == "" {
		t.Error("Expected a non-empty order id")
	}
	if orders := f.broker.Orders(); len(orders) != 1 || orders[0].Price != 2500.0 {
		t.Errorf("Expected one limit order at 2500.0, got %+v", orders)
	}
}

func TestEngineStartTwice(t *testing.T) {
	f := newFixture(t, nil, nil)
	seedCatalog(f)

	if err := f.engine.Start(context.Background()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := f.engine.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}
}

func TestEngineCatalogFailureIsNonFatal(t *testing.T) {
	f := newFixture(t, nil, nil)

	if err := f.engine.Start(context.Background()); err != nil {
		t.Fatalf("Expected Start to succeed without a catalog, got %v", err)
	}
	if got := f.engine.Catalog(); len(got) != 0 {
		t.Errorf("Expected empty catalog, got %v", got)
	}
}

func TestEngineSubscribesTicksAfterCycle(t *testing.T) {
	ticker := &fakeTicker{}
	fsys := fstest.MapFS{"wishlist_tab_1.json": listFile(`["RELIANCE","UNLISTED"]`)}
	f := newFixture(t, fsys, ticker)
	seedCatalog(f)
	ctx := context.Background()

	if err := f.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.engine.poller.Cycle(ctx)

	got := ticker.got()
	if len(got) != 1 || got[0].Symbol != "RELIANCE" || got[0].Token != 738561 {
		t.Errorf("Expected RELIANCE subscription, got %+v", got)
	}
}

func TestEngineTickerStartFailureFallsBackToPolling(t *testing.T) {
	ticker := &fakeTicker{startErr: errors.New("dial failed")}
	f := newFixture(t, fstest.MapFS{"wishlist_tab_1.json": listFile(`["RELIANCE"]`)}, ticker)
	seedCatalog(f)
	f.broker.SetQuote("NSE:RELIANCE", 2500)
	ctx := context.Background()

	if err := f.engine.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.engine.poller.Cycle(ctx)

	if got := ticker.got(); len(got) != 0 {
		t.Errorf("Expected no subscriptions after ticker failure, got %+v", got)
	}
	if price, ok := f.engine.Price("RELIANCE"); !ok || price != 2500 {
		t.Errorf("Expected polling to keep working, got %f ok=%v", price, ok)
	}
}

// slowCatalogBroker holds every instrument dump until release is closed.
type slowCatalogBroker struct {
	*brokertest.Fake
	release chan struct{}
}

func (b *slowCatalogBroker) Instruments(ctx context.Context, exchange string) ([]types.Instrument, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.Fake.Instruments(ctx, exchange)
}

func TestEnginePollsWhileCatalogLoads(t *testing.T) {
	brk := &slowCatalogBroker{Fake: brokertest.New(), release: make(chan struct{})}
	brk.SetInstruments("NSE", []types.Instrument{{Exchange: "NSE", Symbol: "RELIANCE", Token: 738561}})
	brk.SetInstruments("NFO", []types.Instrument{})
	brk.SetQuote("NSE:RELIANCE", 2500)

	fsys := fstest.MapFS{"wishlist_tab_1.json": listFile(`["RELIANCE"]`)}
	loader := wishlist.NewLoader(fsys, store.WishlistSlots, "wishlist_tab_%d.json")
	eng := newEngine(testConfig(), brk, loader, prices.NewMap(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- eng.Run(ctx) }()
	startDone := make(chan error, 1)
	go func() { startDone <- eng.Start(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := eng.WaitFirstCycle(waitCtx); err != nil {
		t.Fatalf("Expected first poll cycle before the catalog finished loading, got %v", err)
	}
	if price, ok := eng.Price("RELIANCE"); !ok || price != 2500 {
		t.Errorf("Expected RELIANCE at 2500, got %f ok=%v", price, ok)
	}
	select {
	case err := <-startDone:
		t.Fatalf("Start returned before the instrument dump was released: %v", err)
	default:
	}

	close(brk.release)
	if err := <-startDone; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := eng.Catalog(); len(got) != 1 || got[0] != "RELIANCE" {
		t.Errorf("Expected catalog [RELIANCE], got %v", got)
	}

	cancel()
	if err := <-runDone; err != nil {
		t.Errorf("Run: %v", err)
	}
}
