package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/prices"
	"wishlist-trader/internal/tradelog"
	"wishlist-trader/internal/types"
)

var (
	// ErrNoPrice means the symbol has never been priced by the poller or ticker.
	ErrNoPrice      = errors.New("no price available")
	ErrInvalidOrder = errors.New("invalid order")
)

// orderExecutor places limit orders at the last cached price and journals
// every attempt.
type orderExecutor struct {
	broker   interfaces.Broker
	prices   *prices.Map
	journal  func(tradelog.Entry) error
}

func newOrderExecutor(broker interfaces.Broker, pm *prices.Map) *orderExecutor {
	return &orderExecutor{
		broker:  broker,
		prices:  pm,
		journal: tradelog.Append,
	}
}

// place submits one limit order at the last cached price, as is. There is no
// retry and no tracking after the broker accepts it.
func (oe *orderExecutor) place(ctx context.Context, symbol string, qty int, side string) (types.OrderResp, error) {
	side = strings.ToUpper(side)
	entry := tradelog.Entry{Symbol: symbol, Side: side, Qty: qty}

	if err := validateOrder(symbol, qty, side); err != nil {
		return oe.fail(ctx, entry, err)
	}

	price, ok := oe.prices.Get(symbol)
	if !ok {
		return oe.fail(ctx, entry, fmt.Errorf("%w for %s", ErrNoPrice, symbol))
	}

	req := types.OrderReq{
		Symbol: symbol,
		Side:   side,
		Qty:    qty,
		Price:  price,
		Tag:    newOrderTag(),
	}
	entry.Price = req.Price
	entry.Tag = req.Tag

	resp, err := oe.broker.PlaceOrder(ctx, req)
	if err != nil {
		return oe.fail(ctx, entry, fmt.Errorf("%s %s rejected: %w", side, symbol, err))
	}

	logger.Trade(ctx, symbol, side, qty, req.Price, resp.OrderID, "tag", req.Tag, "status", resp.Status)

	entry.OrderID = resp.OrderID
	entry.Status = resp.Status
	oe.record(ctx, entry)
	return resp, nil
}

func (oe *orderExecutor) fail(ctx context.Context, entry tradelog.Entry, err error) (types.OrderResp, error) {
	logger.ErrorWithErr(ctx, "Order placement failed", err,
		"symbol", entry.Symbol,
		"side", entry.Side,
		"qty", entry.Qty,
	)
	entry.Status = "FAILED"
	entry.Error = err.Error()
	oe.record(ctx, entry)
	return types.OrderResp{}, err
}

func (oe *orderExecutor) record(ctx context.Context, entry tradelog.Entry) {
	if oe.journal == nil {
		return
	}
	if err := oe.journal(entry); err != nil {
		logger.Warn(ctx, "Failed to append trade journal", "symbol", entry.Symbol, "error", err)
	}
}

func validateOrder(symbol string, qty int, side string) error {
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidOrder)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidOrder, qty)
	}
	if side != types.SideBuy && side != types.SideSell {
		return fmt.Errorf("%w: side must be BUY or SELL, got %q", ErrInvalidOrder, side)
	}
	return nil
}
