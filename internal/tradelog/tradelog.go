package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu  sync.Mutex
	ist = time.FixedZone("IST", 19800)
)

// Entry is one order placement attempt. Error is set when it failed.
type Entry struct {
	Time, Symbol, Side, OrderID, Status, Tag string
	Qty                                      int
	Price                                    float64
	Error                                    string         `json:",omitempty"`
	Extra                                    map[string]any `json:"extra,omitempty"`
}

// Dir is the journal directory, $TRADER_LOG_DIR or ./logs.
func Dir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// DailyFilepath is the journal file for the IST date of t.
func DailyFilepath(t time.Time) string {
	return filepath.Join(Dir(), t.In(ist).Format("2006-01-02")+".txt")
}

// Append writes e as one JSON line to today's journal file.
func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().In(ist)
	e.Time = now.Format("2006-01-02 15:04:05")
	p := DailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips journal files not modified in the last retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(Dir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed on an earlier run
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err == nil {
			_ = os.Remove(p)
		}
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
