package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	if err := Append(Entry{Symbol: "RELIANCE", Side: "BUY", Qty: 1, Price: 2500, OrderID: "X1", Status: "PLACED"}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := Append(Entry{Symbol: "TATAMOTORS", Side: "BUY", Qty: 1, Error: "no price"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	f, err := os.Open(DailyFilepath(time.Now()))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].OrderID != "X1" || entries[0].Time == "" {
		t.Errorf("Unexpected first entry %+v", entries[0])
	}
	if entries[1].Error != "no price" {
		t.Errorf("Expected failure recorded, got %+v", entries[1])
	}
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	old := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(old, []byte("{\"Symbol\":\"TCS\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "today.txt")
	if err := os.WriteFile(fresh, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("CompressOlder: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed, stat err %v", old, err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("Expected fresh file kept: %v", err)
	}

	gzf, err := os.Open(old + ".gz")
	if err != nil {
		t.Fatalf("open gz: %v", err)
	}
	defer gzf.Close()
	gr, err := gzip.NewReader(gzf)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	b, _ := io.ReadAll(gr)
	if string(b) != "{\"Symbol\":\"TCS\"}\n" {
		t.Errorf("Unexpected decompressed content %q", b)
	}
}

func TestCompressOlderDisabled(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	if err := CompressOlder(0); err != nil {
		t.Errorf("Expected nil for disabled retention, got %v", err)
	}
}
