package zerodha

import (
	"context"
	"time"

	"wishlist-trader/internal/logger"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
	"github.com/zerodha/gokiteconnect/v4/models"
)

func (tm *tickerManager) setupEventHandlers() {
	tm.ticker.OnConnect(tm.onConnect)
	tm.ticker.OnError(tm.onError)
	tm.ticker.OnClose(tm.onClose)
	tm.ticker.OnReconnect(tm.onReconnect)
	tm.ticker.OnNoReconnect(tm.onNoReconnect)
	tm.ticker.OnTick(tm.onTick)
	tm.ticker.OnOrderUpdate(tm.onOrderUpdate)
}

func (tm *tickerManager) onConnect() {
	ctx := context.Background()
	tm.connected.Store(true)
	logger.Info(ctx, "WebSocket connected")

	tokens := tm.mapper.getAllTokens()
	if len(tokens) == 0 {
		return
	}
	if err := tm.send(tokens); err != nil {
		logger.ErrorWithErr(ctx, "Failed to resubscribe after connect", err, "count", len(tokens))
	}
}

func (tm *tickerManager) onError(err error) {
	logger.ErrorWithErr(context.Background(), "WebSocket error", err)
}

func (tm *tickerManager) onClose(code int, reason string) {
	tm.connected.Store(false)
	logger.Warn(context.Background(), "WebSocket closed", "code", code, "reason", reason)
}

func (tm *tickerManager) onReconnect(attempt int, delay time.Duration) {
	logger.Info(context.Background(), "WebSocket reconnecting", "attempt", attempt, "delay", delay)
}

func (tm *tickerManager) onNoReconnect(attempt int) {
	logger.Warn(context.Background(), "WebSocket reconnection failed - giving up", "attempts", attempt)
}

func (tm *tickerManager) onTick(tick models.Tick) {
	symbol := tm.mapper.getSymbol(tick.InstrumentToken)
	if symbol == "" || tick.LastPrice <= 0 {
		return
	}
	tm.sink.Set(symbol, tick.LastPrice)
}

func (tm *tickerManager) onOrderUpdate(order kiteconnect.Order) {
	logger.Debug(context.Background(), "Order update received",
		"order_id", order.OrderID,
		"status", order.Status,
		"symbol", order.TradingSymbol,
	)
}
