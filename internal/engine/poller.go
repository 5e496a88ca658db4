package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/types"
	"wishlist-trader/internal/wishlist"
)

// ErrNoQuote means the broker answered but listed none of the symbol's keys.
var ErrNoQuote = errors.New("no quote for any exchange")

// Poller refreshes the price map from the wishlists. Each cycle reloads every
// wishlist file, then fetches the LTP of each symbol one at a time. The pause
// is taken after a full pass, so a slow pass pushes the next one back.
type Poller struct {
	brk       interfaces.Broker
	loader    *wishlist.Loader
	prices    *prices.Map
	exchanges []string
	interval  time.Duration

	after   func(time.Duration) <-chan time.Time
	onCycle func(ctx context.Context, set wishlist.Set, stats types.CycleStats)

	mu        sync.RWMutex
	wishlists wishlist.Set
	cycles    int

	firstCycle chan struct{}
	firstOnce  sync.Once
}

func NewPoller(brk interfaces.Broker, loader *wishlist.Loader, pm *prices.Map, exchanges []string, interval time.Duration) *Poller {
	return &Poller{
		brk:        brk,
		loader:     loader,
		prices:     pm,
		exchanges:  exchanges,
		interval:   interval,
		after:      time.After,
		firstCycle: make(chan struct{}),
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	logger.Info(ctx, "Price poller started", "interval", p.interval, "exchanges", p.exchanges)
	for ctx.Err() == nil {
		p.Cycle(ctx)

		select {
		case <-ctx.Done():
		case <-p.after(p.interval):
		}
	}
	logger.Info(context.Background(), "Price poller stopped", "cycles", p.Cycles())
	return nil
}

// Cycle runs one reload-and-fetch pass.
func (p *Poller) Cycle(ctx context.Context) types.CycleStats {
	set := p.loader.LoadAll(ctx)
	symbols := set.Symbols()

	p.mu.Lock()
	p.wishlists = set
	p.mu.Unlock()

	stats := types.CycleStats{Symbols: len(symbols)}
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return stats
		}
		price, err := p.fetch(ctx, symbol)
		if err != nil {
			stats.Failed++
			logger.Warn(ctx, "Failed to fetch price", "symbol", symbol, "error", err)
			continue
		}
		p.prices.Set(symbol, price)
		stats.Fetched++
	}

	p.mu.Lock()
	p.cycles++
	p.mu.Unlock()
	p.firstOnce.Do(func() { close(p.firstCycle) })

	if p.onCycle != nil {
		p.onCycle(ctx, set, stats)
	}
	logger.Debug(ctx, "Price poll cycle completed",
		"symbols", stats.Symbols,
		"fetched", stats.Fetched,
		"failed", stats.Failed,
	)
	return stats
}

// fetch asks for every exchange-qualified key of symbol in one call and takes
// the first key, in exchange order, that the broker answered for.
func (p *Poller) fetch(ctx context.Context, symbol string) (float64, error) {
	keys := make([]string, 0, len(p.exchanges))
	for _, exchange := range p.exchanges {
		keys = append(keys, types.QualifiedSymbol(exchange, symbol))
	}

	quotes, err := p.brk.LTP(ctx, keys...)
	if err != nil {
		return 0, err
	}
	for _, key := range keys {
		if price, ok := quotes[key]; ok {
			return price, nil
		}
	}
	return 0, fmt.Errorf("%w: %v", ErrNoQuote, keys)
}

// WaitFirstCycle blocks until one full pass has completed or ctx is done.
func (p *Poller) WaitFirstCycle(ctx context.Context) error {
	select {
	case <-p.firstCycle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) Wishlists() wishlist.Set {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.wishlists
}

func (p *Poller) Cycles() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cycles
}
