package engine

import (
	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/store"
	"wishlist-trader/internal/wishlist"
)

func New(cfg *store.Config, brk interfaces.Broker, loader *wishlist.Loader, pm *prices.Map, ticker interfaces.TickerManager) interfaces.Engine {
	return newEngine(cfg, brk, loader, pm, ticker)
}
