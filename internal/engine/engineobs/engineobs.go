package engineobs

import (
	"context"
	"time"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/trace"
	"wishlist-trader/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Start(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "engine.Start")
	defer span.End()

	start := time.Now()
	logger.InfoSkip(ctx, 1, "Starting engine")

	if err := oe.engine.Start(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Engine start failed", err)
		return err
	}

	logger.InfoSkip(ctx, 1, "Engine started",
		"catalog_size", len(oe.engine.Catalog()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (oe *observableEngine) Run(ctx context.Context) error {
	return oe.engine.Run(ctx)
}

func (oe *observableEngine) WaitFirstCycle(ctx context.Context) error {
	return oe.engine.WaitFirstCycle(ctx)
}

func (oe *observableEngine) PlaceOrder(ctx context.Context, symbol string, qty int, side string) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "engine.PlaceOrder")
	defer span.End()

	start := time.Now()
	resp, err := oe.engine.PlaceOrder(ctx, symbol, qty, side)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.DebugSkip(ctx, 1, "PlaceOrder returned error",
			"symbol", symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}

	logger.InfoSkip(ctx, 1, "Order placement completed",
		"symbol", symbol,
		"side", side,
		"qty", qty,
		"order_id", resp.OrderID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (oe *observableEngine) Price(symbol string) (float64, bool) {
	return oe.engine.Price(symbol)
}

func (oe *observableEngine) Catalog() []string {
	return oe.engine.Catalog()
}
