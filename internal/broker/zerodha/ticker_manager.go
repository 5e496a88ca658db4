package zerodha

import (
	"context"
	"fmt"
	"sync/atomic"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/logger"
	"wishlist-trader/internal/types"

	kiteticker "github.com/zerodha/gokiteconnect/v4/ticker"
)

// PriceSink receives last traded prices from the ticker.
type PriceSink interface {
	Set(symbol string, price float64)
}

// tickerManager streams LTP ticks over the Kite websocket into a PriceSink.
// Subscriptions requested before the socket is up are remembered and sent
// from onConnect, which also covers reconnects.
type tickerManager struct {
	ticker      *kiteticker.Ticker
	apiKey      string
	accessToken string

	sink      PriceSink
	mapper    *instrumentMapper
	connected atomic.Bool
}

var _ interfaces.TickerManager = (*tickerManager)(nil)

func NewTickerManager(apiKey, accessToken string, sink PriceSink) interfaces.TickerManager {
	return newTickerManager(apiKey, accessToken, sink)
}

func newTickerManager(apiKey, accessToken string, sink PriceSink) *tickerManager {
	return &tickerManager{
		apiKey:      apiKey,
		accessToken: accessToken,
		sink:        sink,
		mapper:      newInstrumentMapper(),
	}
}

func (tm *tickerManager) Start(ctx context.Context) error {
	if tm.apiKey == "" || tm.accessToken == "" {
		return ErrMissingCredentials
	}

	tm.ticker = kiteticker.New(tm.apiKey, tm.accessToken)
	tm.setupEventHandlers()

	go func() {
		logger.Info(ctx, "Starting Zerodha WebSocket ticker")
		tm.ticker.Serve()
	}()
	go func() {
		<-ctx.Done()
		tm.Stop(context.Background())
	}()

	return nil
}

func (tm *tickerManager) Stop(ctx context.Context) {
	if tm.ticker != nil {
		logger.Info(ctx, "Stopping Zerodha WebSocket ticker")
		tm.connected.Store(false)
		tm.ticker.Stop()
	}
}

// Subscribe registers instruments for LTP ticks. Already subscribed tokens
// are skipped.
func (tm *tickerManager) Subscribe(ctx context.Context, instruments []types.Instrument) error {
	tokens := make([]uint32, 0, len(instruments))
	for _, inst := range instruments {
		if tm.mapper.addMapping(inst.Symbol, inst.Token) {
			tokens = append(tokens, inst.Token)
		}
	}

	if len(tokens) == 0 || !tm.connected.Load() {
		return nil
	}

	if err := tm.send(tokens); err != nil {
		return err
	}
	logger.Info(ctx, "Subscribed to live ticks", "count", len(tokens))
	return nil
}

func (tm *tickerManager) send(tokens []uint32) error {
	if err := tm.ticker.Subscribe(tokens); err != nil {
		return fmt.Errorf("failed to subscribe to symbols: %w", err)
	}
	if err := tm.ticker.SetMode(kiteticker.ModeLTP, tokens); err != nil {
		return fmt.Errorf("failed to set ticker mode: %w", err)
	}
	return nil
}
