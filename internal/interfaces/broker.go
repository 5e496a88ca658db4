package interfaces

import (
	"context"

	"wishlist-trader/internal/types"
)

type Broker interface {
	// LTP returns last traded prices keyed by the exchange-qualified symbols
	// that the broker recognised. Unknown keys are simply absent.
	LTP(ctx context.Context, keys ...string) (map[string]float64, error)
	Instruments(ctx context.Context, exchange string) ([]types.Instrument, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
