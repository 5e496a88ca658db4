package engine

import (
	"context"
	"errors"
	"sync"

	"wishlist-trader/internal/catalog"
	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/store"
	"wishlist-trader/internal/types"
	"wishlist-trader/internal/wishlist"
)

var ErrAlreadyStarted = errors.New("engine already started")

// Engine ties the session, wishlists, price map, poller and order executor
// together. All state lives here; nothing is package-global.
type Engine struct {
	brk              interfaces.Broker
	prices           *prices.Map
	poller           *Poller
	executor         *orderExecutor
	ticker           interfaces.TickerManager
	catalogExchanges []string

	mu      sync.RWMutex
	catalog *catalog.Catalog
	started bool
}

var _ interfaces.Engine = (*Engine)(nil)

// newEngine builds an engine. ticker may be nil.
func newEngine(cfg *store.Config, brk interfaces.Broker, loader *wishlist.Loader, pm *prices.Map, ticker interfaces.TickerManager) *Engine {
	e := &Engine{
		brk:              brk,
		prices:           pm,
		poller:           NewPoller(brk, loader, pm, cfg.Exchanges.Quote, cfg.PollInterval()),
		executor:         newOrderExecutor(brk, pm),
		ticker:           ticker,
		catalogExchanges: cfg.Exchanges.Catalog,
		catalog:          catalog.Empty(),
	}
	if ticker != nil {
		e.poller.onCycle = e.subscribeTicks
	}
	return e
}

// Start loads the instrument catalog and, when configured, starts the live
// ticker. It does not poll; Run may already be going while the catalog loads,
// and ticks are only subscribed once both are in place.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	ticker := e.ticker
	e.mu.Unlock()

	cat := catalog.Load(ctx, e.brk, e.catalogExchanges)

	if ticker != nil {
		if err := ticker.Start(ctx); err != nil {
			logger.Warn(ctx, "Live ticker unavailable, polling only", "error", err)
			ticker = nil
		}
	}

	e.mu.Lock()
	e.catalog = cat
	e.ticker = ticker
	e.mu.Unlock()
	return nil
}

// Run polls prices until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	return e.poller.Run(ctx)
}

func (e *Engine) WaitFirstCycle(ctx context.Context) error {
	return e.poller.WaitFirstCycle(ctx)
}

func (e *Engine) PlaceOrder(ctx context.Context, symbol string, qty int, side string) (types.OrderResp, error) {
	return e.executor.place(ctx, symbol, qty, side)
}

func (e *Engine) Price(symbol string) (float64, bool) {
	return e.prices.Get(symbol)
}

func (e *Engine) Catalog() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog.Symbols()
}

func (e *Engine) Wishlists() wishlist.Set {
	return e.poller.Wishlists()
}

// subscribeTicks runs after each poll cycle so symbols added to a wishlist
// file also start streaming.
func (e *Engine) subscribeTicks(ctx context.Context, set wishlist.Set, _ types.CycleStats) {
	e.mu.RLock()
	ticker := e.ticker
	instruments := e.catalog.Resolve(set.Symbols())
	e.mu.RUnlock()

	if ticker == nil || len(instruments) == 0 {
		return
	}
	if err := ticker.Subscribe(ctx, instruments); err != nil {
		logger.Warn(ctx, "Failed to subscribe live ticks", "count", len(instruments), "error", err)
	}
}
