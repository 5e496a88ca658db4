package catalog

import (
	"context"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/types"
)

// Catalog is the list of tradable instruments across a fixed set of exchange
// segments. It is loaded once at startup and never refreshed.
type Catalog struct {
	exchanges   []string
	instruments []types.Instrument
	byKey       map[string]types.Instrument
}

// Empty returns a catalog with no instruments.
func Empty() *Catalog {
	return &Catalog{byKey: make(map[string]types.Instrument)}
}

// Load fetches the instruments of every exchange in order. If any fetch fails
// the failure is logged and an empty catalog is returned.
func Load(ctx context.Context, brk interfaces.Broker, exchanges []string) *Catalog {
	c := Empty()
	c.exchanges = exchanges

	for _, exchange := range exchanges {
		instruments, err := brk.Instruments(ctx, exchange)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to fetch all instruments", err, "exchange", exchange)
			return Empty()
		}
		for _, inst := range instruments {
			c.add(inst)
		}
	}

	logger.Info(ctx, "Instrument catalog loaded", "exchanges", exchanges, "count", len(c.instruments))
	return c
}

func (c *Catalog) add(inst types.Instrument) {
	c.instruments = append(c.instruments, inst)
	if _, exists := c.byKey[inst.Key()]; !exists {
		c.byKey[inst.Key()] = inst
	}
}

// Symbols returns every trading symbol in load order, duplicates included.
func (c *Catalog) Symbols() []string {
	out := make([]string, 0, len(c.instruments))
	for _, inst := range c.instruments {
		out = append(out, inst.Symbol)
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.instruments)
}

// Lookup finds symbol on the first catalog exchange that lists it.
func (c *Catalog) Lookup(symbol string) (types.Instrument, bool) {
	for _, exchange := range c.exchanges {
		if inst, ok := c.byKey[types.QualifiedSymbol(exchange, symbol)]; ok {
			return inst, true
		}
	}
	return types.Instrument{}, false
}

// Resolve maps symbols to instruments, skipping the ones not in the catalog.
func (c *Catalog) Resolve(symbols []string) []types.Instrument {
	out := make([]types.Instrument, 0, len(symbols))
	for _, symbol := range symbols {
		if inst, ok := c.Lookup(symbol); ok {
			out = append(out, inst)
		}
	}
	return out
}
