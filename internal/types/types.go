package types

// Order sides accepted by the broker.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Instrument is one tradable row of the exchange instrument dump.
type Instrument struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Token    uint32 `json:"token"`
}

// Key returns the exchange-qualified symbol, e.g. NSE:RELIANCE.
func (i Instrument) Key() string {
	return QualifiedSymbol(i.Exchange, i.Symbol)
}

func QualifiedSymbol(exchange, symbol string) string {
	return exchange + ":" + symbol
}

type OrderReq struct {
	Symbol, Side string
	Qty          int
	Price        float64
	Tag          string
}

type OrderResp struct {
	OrderID string  `json:"order_id"`
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Price   float64 `json:"price"`
}

// CycleStats summarises one pass of the price poller.
type CycleStats struct {
	Symbols int `json:"symbols"`
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}
