package interfaces

import (
	"context"

	"wishlist-trader/internal/types"
)

type TickerManager interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
	Subscribe(ctx context.Context, instruments []types.Instrument) error
}
