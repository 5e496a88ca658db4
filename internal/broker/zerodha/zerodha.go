package zerodha

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/types"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

const (
	ModeDryRun = "DRY_RUN"
	ModeLive   = "LIVE"
)

var ErrMissingCredentials = errors.New("missing API key/access token")

type Params struct {
	Mode        string
	APIKey      string
	AccessToken string

	// Order settings applied to every placement.
	Exchange string
	Variety  string
	Type     string
	Product  string
	Validity string

	// BaseURI overrides the Kite API root (tests, sandboxes).
	BaseURI string
}

// Zerodha is the single authenticated Kite session. It serves both order
// sides; there is no separate buy and sell handle.
type Zerodha struct {
	p  Params
	kc *kiteconnect.Client
}

var _ interfaces.Broker = (*Zerodha)(nil)

func NewZerodha(p Params) *Zerodha {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	if p.BaseURI != "" {
		kc.SetBaseURI(p.BaseURI)
	}
	return &Zerodha{p: p, kc: kc}
}

func (z *Zerodha) LTP(ctx context.Context, keys ...string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quotes, err := z.kc.GetLTP(keys...)
	if err != nil {
		return nil, fmt.Errorf("get ltp: %w", err)
	}

	out := make(map[string]float64, len(quotes))
	for key, q := range quotes {
		out[key] = q.LastPrice
	}
	return out, nil
}

func (z *Zerodha) Instruments(ctx context.Context, exchange string) ([]types.Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instruments, err := z.kc.GetInstrumentsByExchange(exchange)
	if err != nil {
		return nil, fmt.Errorf("get instruments %s: %w", exchange, err)
	}

	out := make([]types.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, types.Instrument{
			Exchange: inst.Exchange,
			Symbol:   inst.Tradingsymbol,
			Token:    uint32(inst.InstrumentToken),
		})
	}
	return out, nil
}

func (z *Zerodha) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if z.p.Mode == ModeDryRun {
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
			Price:   req.Price,
		}, nil
	}

	if z.p.APIKey == "" || z.p.AccessToken == "" {
		return types.OrderResp{}, ErrMissingCredentials
	}
	if err := ctx.Err(); err != nil {
		return types.OrderResp{}, err
	}

	resp, err := z.kc.PlaceOrder(z.p.Variety, kiteconnect.OrderParams{
		Exchange:        z.p.Exchange,
		Tradingsymbol:   req.Symbol,
		TransactionType: req.Side,
		Quantity:        req.Qty,
		Price:           req.Price,
		OrderType:       z.p.Type,
		Product:         z.p.Product,
		Validity:        z.p.Validity,
		Tag:             req.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("place order: %w", err)
	}

	return types.OrderResp{
		OrderID: resp.OrderID,
		Status:  "PLACED",
		Message: "ok",
		Price:   req.Price,
	}, nil
}
