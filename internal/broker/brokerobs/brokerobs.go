package brokerobs

import (
	"context"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/trace"
	"wishlist-trader/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

var _ interfaces.Broker = (*observableBroker)(nil)

func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

// LTP is logged at debug only: the poller calls it once per symbol per second.
func (ob *observableBroker) LTP(ctx context.Context, keys ...string) (map[string]float64, error) {
	ctx, span := trace.StartSpan(ctx, "broker.LTP")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching LTP", "keys", keys)

	quotes, err := ob.broker.LTP(ctx, keys...)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.DebugSkip(ctx, 1, "LTP fetch failed", "keys", keys, "error", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "LTP fetched", "keys", keys, "quotes", quotes)
	return quotes, nil
}

func (ob *observableBroker) Instruments(ctx context.Context, exchange string) ([]types.Instrument, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Instruments")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Fetching instruments", "exchange", exchange)

	instruments, err := ob.broker.Instruments(ctx, exchange)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch instruments", err, "exchange", exchange)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Instruments fetched", "exchange", exchange, "count", len(instruments))
	return instruments, nil
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"symbol", req.Symbol,
		"side", req.Side,
		"qty", req.Qty,
		"price", req.Price,
		"tag", req.Tag,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"symbol", req.Symbol,
			"side", req.Side,
			"qty", req.Qty,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order accepted by broker",
		"symbol", req.Symbol,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
