// Package brokertest provides an in-memory Broker for tests.
package brokertest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/types"
)

var ErrUnknownExchange = errors.New("unknown exchange")

// Fake answers LTP from a quote table, lists canned instruments and records
// every order it is asked to place.
type Fake struct {
	mu          sync.Mutex
	quotes      map[string]float64
	failures    map[string]error
	instruments map[string][]types.Instrument
	orderErr    error
	nextOrderID int

	ltpCalls [][]string
	orders   []types.OrderReq
}

var _ interfaces.Broker = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		quotes:      make(map[string]float64),
		failures:    make(map[string]error),
		instruments: make(map[string][]types.Instrument),
		nextOrderID: 1,
	}
}

// SetQuote sets the LTP returned for an exchange-qualified key.
func (f *Fake) SetQuote(key string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes[key] = price
}

// Fail makes any LTP call that includes key return err. A nil err clears it.
func (f *Fake) Fail(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, key)
		return
	}
	f.failures[key] = err
}

func (f *Fake) SetInstruments(exchange string, instruments []types.Instrument) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instruments[exchange] = instruments
}

func (f *Fake) SetOrderError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orderErr = err
}

func (f *Fake) LTPCalls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.ltpCalls...)
}

func (f *Fake) Orders() []types.OrderReq {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.OrderReq(nil), f.orders...)
}

func (f *Fake) LTP(ctx context.Context, keys ...string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ltpCalls = append(f.ltpCalls, append([]string(nil), keys...))
	for _, key := range keys {
		if err, ok := f.failures[key]; ok {
			return nil, err
		}
	}

	out := make(map[string]float64)
	for _, key := range keys {
		if price, ok := f.quotes[key]; ok {
			out[key] = price
		}
	}
	return out, nil
}

func (f *Fake) Instruments(ctx context.Context, exchange string) ([]types.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	instruments, ok := f.instruments[exchange]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExchange, exchange)
	}
	return instruments, nil
}

func (f *Fake) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return types.OrderResp{}, f.orderErr
	}

	id := fmt.Sprintf("FAKE-%d", f.nextOrderID)
	f.nextOrderID++
	return types.OrderResp{OrderID: id, Status: "PLACED", Message: "ok", Price: req.Price}, nil
}
