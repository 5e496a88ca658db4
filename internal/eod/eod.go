// Package eod turns the day's order journal into a per-symbol CSV report
// once the market has closed.
package eod

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"wishlist-trader/internal/interfaces"
	"wishlist-trader/internal/tradelog"

	"github.com/shopspring/decimal"
)

var ist = time.FixedZone("IST", 19800)

type aggRow struct {
	Symbol    string
	Placed    int
	Failed    int
	BuyQty    int
	BuyValue  decimal.Decimal
	SellQty   int
	SellValue decimal.Decimal
}

type eodSummarizer struct {
	now func() time.Time
}

var _ interfaces.EodSummarizer = (*eodSummarizer)(nil)

func NewSummarizer() interfaces.EodSummarizer {
	return &eodSummarizer{now: time.Now}
}

func (s *eodSummarizer) istNow() time.Time {
	return s.now().In(ist)
}

func csvPath(t time.Time) string {
	return filepath.Join(tradelog.Dir(), "eod", t.In(ist).Format("2006-01-02")+".csv")
}

// marketClose is 15:40 IST, a little after the NSE closing session.
func marketClose(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 15, 40, 0, 0, t.Location())
}

// SummarizeDay writes the CSV for t's journal. It returns "" and no error
// when there was nothing to summarise.
func (s *eodSummarizer) SummarizeDay(_ context.Context, t time.Time) (string, error) {
	f, err := os.Open(tradelog.DailyFilepath(t))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()

	aggs := map[string]*aggRow{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e tradelog.Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		row := aggs[e.Symbol]
		if row == nil {
			row = &aggRow{Symbol: e.Symbol}
			aggs[e.Symbol] = row
		}
		if e.Error != "" {
			row.Failed++
			continue
		}
		row.Placed++
		switch e.Side {
		case "BUY":
			row.BuyQty += e.Qty
			row.BuyValue = row.BuyValue.Add(notional(e.Qty, e.Price))
		case "SELL":
			row.SellQty += e.Qty
			row.SellValue = row.SellValue.Add(notional(e.Qty, e.Price))
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(aggs) == 0 {
		return "", nil
	}

	return writeCSV(csvPath(t), aggs)
}

func notional(qty int, price float64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}

func average(value decimal.Decimal, qty int) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return value.Div(decimal.NewFromInt(int64(qty)))
}

func writeCSV(outPath string, aggs map[string]*aggRow) (string, error) {
	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "placed", "failed", "buy_qty", "buy_avg", "sell_qty", "sell_avg", "gross_buy_value", "gross_sell_value"}
	if err := w.Write(headers); err != nil {
		return "", err
	}

	var placed, failed int
	var totalBuy, totalSell decimal.Decimal
	for _, k := range keys {
		r := aggs[k]
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Placed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.BuyQty),
			average(r.BuyValue, r.BuyQty).StringFixed(4),
			strconv.Itoa(r.SellQty),
			average(r.SellValue, r.SellQty).StringFixed(4),
			r.BuyValue.StringFixed(2),
			r.SellValue.StringFixed(2),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		placed += r.Placed
		failed += r.Failed
		totalBuy = totalBuy.Add(r.BuyValue)
		totalSell = totalSell.Add(r.SellValue)
	}
	total := []string{"TOTAL", strconv.Itoa(placed), strconv.Itoa(failed), "", "", "", "", totalBuy.StringFixed(2), totalSell.StringFixed(2)}
	if err := w.Write(total); err != nil {
		return "", err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return outPath, nil
}

func (s *eodSummarizer) SummarizeToday(ctx context.Context) (string, error) {
	return s.SummarizeDay(ctx, s.istNow())
}

// ShouldRunNow is true after market close when today's CSV does not exist yet.
func (s *eodSummarizer) ShouldRunNow() (bool, string) {
	now := s.istNow()
	outPath := csvPath(now)
	if now.After(marketClose(now)) {
		if _, err := os.Stat(outPath); errors.Is(err, os.ErrNotExist) {
			return true, outPath
		}
	}
	return false, outPath
}
