package interfaces

import (
	"context"

	"wishlist-trader/internal/types"
)

type Engine interface {
	Start(ctx context.Context) error
	Run(ctx context.Context) error
	WaitFirstCycle(ctx context.Context) error
	PlaceOrder(ctx context.Context, symbol string, qty int, side string) (types.OrderResp, error)
	Price(symbol string) (float64, bool)
	Catalog() []string
}
