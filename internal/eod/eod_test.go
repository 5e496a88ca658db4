package eod

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wishlist-trader/internal/tradelog"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return rows
}

func TestSummarizeTodayAggregatesPerSymbol(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	entries := []tradelog.Entry{
		{Symbol: "RELIANCE", Side: "BUY", Qty: 2, Price: 2500, OrderID: "A", Status: "PLACED"},
		{Symbol: "RELIANCE", Side: "SELL", Qty: 1, Price: 2510, OrderID: "B", Status: "PLACED"},
		{Symbol: "TATAMOTORS", Side: "BUY", Qty: 1, Error: "no price"},
	}
	for _, e := range entries {
		if err := tradelog.Append(e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	s := NewSummarizer()
	path, err := s.SummarizeToday(context.Background())
	if err != nil {
		t.Fatalf("SummarizeToday: %v", err)
	}
	if path == "" {
		t.Fatal("expected a csv path")
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 2 symbols + total", len(rows))
	}
	rel := rows[1]
	if rel[0] != "RELIANCE" || rel[1] != "2" || rel[2] != "0" || rel[3] != "2" || rel[4] != "2500.0000" || rel[5] != "1" {
		t.Fatalf("RELIANCE row = %v", rel)
	}
	tm := rows[2]
	if tm[0] != "TATAMOTORS" || tm[1] != "0" || tm[2] != "1" || tm[3] != "0" {
		t.Fatalf("TATAMOTORS row = %v", tm)
	}
	total := rows[3]
	if total[0] != "TOTAL" || total[1] != "2" || total[2] != "1" || total[7] != "5000.00" || total[8] != "2510.00" {
		t.Fatalf("TOTAL row = %v", total)
	}
}

func TestSummarizeKeepsPaiseExact(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	for i := 0; i < 3; i++ {
		if err := tradelog.Append(tradelog.Entry{Symbol: "IDEA", Side: "BUY", Qty: 1, Price: 7.13, OrderID: "A", Status: "PLACED"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	path, err := NewSummarizer().SummarizeToday(context.Background())
	if err != nil {
		t.Fatalf("SummarizeToday: %v", err)
	}
	row := readCSV(t, path)[1]
	if row[4] != "7.1300" || row[7] != "21.39" {
		t.Fatalf("IDEA row = %v", row)
	}
}

func TestSummarizeDayWithoutJournal(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	path, err := NewSummarizer().SummarizeDay(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("SummarizeDay: %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty", path)
	}
}

func TestShouldRunNow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	before := time.Date(2024, 3, 4, 10, 0, 0, 0, ist)
	after := time.Date(2024, 3, 4, 16, 0, 0, 0, ist)

	s := &eodSummarizer{now: func() time.Time { return before }}
	if run, _ := s.ShouldRunNow(); run {
		t.Fatal("should not run before market close")
	}

	s.now = func() time.Time { return after }
	run, path := s.ShouldRunNow()
	if !run {
		t.Fatal("should run after market close")
	}
	if want := filepath.Join(dir, "eod", "2024-03-04.csv"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("symbol\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if run, _ := s.ShouldRunNow(); run {
		t.Fatal("should not run once the csv exists")
	}
}
