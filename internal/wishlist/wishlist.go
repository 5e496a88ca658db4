// Package wishlist reads the fixed set of wishlist tabs. Each tab is a JSON
// array of trading symbols stored in its own file.
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"wishlist-trader/internal/logger"
)

// ErrMalformed is returned when a wishlist file is not a JSON array of strings.
var ErrMalformed = errors.New("malformed wishlist file")

// Set holds one symbol list per slot, in slot order.
type Set [][]string

// Symbols flattens all slots in order, keeping the first occurrence of each symbol.
func (s Set) Symbols() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range s {
		for _, symbol := range list {
			if _, dup := seen[symbol]; dup {
				continue
			}
			seen[symbol] = struct{}{}
			out = append(out, symbol)
		}
	}
	return out
}

type Loader struct {
	fsys    fs.FS
	slots   int
	pattern string
}

// NewLoader reads slot files named by pattern (a fmt verb taking the 1-based
// slot number) from fsys.
func NewLoader(fsys fs.FS, slots int, pattern string) *Loader {
	return &Loader{fsys: fsys, slots: slots, pattern: pattern}
}

func (l *Loader) Slots() int {
	return l.slots
}

// FileName returns the file backing a 0-based slot.
func (l *Loader) FileName(slot int) string {
	return fmt.Sprintf(l.pattern, slot+1)
}

// LoadSlot reads one slot. A missing file is an empty wishlist, not an error.
func (l *Loader) LoadSlot(slot int) ([]string, error) {
	if slot < 0 || slot >= l.slots {
		return nil, fmt.Errorf("wishlist slot %d out of range [0,%d)", slot, l.slots)
	}

	name := l.FileName(slot)
	b, err := fs.ReadFile(l.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var symbols []string
	if err := json.Unmarshal(b, &symbols); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformed, name, err)
	}
	if symbols == nil {
		symbols = []string{}
	}
	return symbols, nil
}

// LoadAll reads every slot. A slot that cannot be read or parsed is logged
// and treated as empty so one bad file never stops the others.
func (l *Loader) LoadAll(ctx context.Context) Set {
	set := make(Set, l.slots)
	for slot := 0; slot < l.slots; slot++ {
		symbols, err := l.LoadSlot(slot)
		if err != nil {
			logger.Warn(ctx, "Failed to load wishlist, treating as empty",
				"slot", slot,
				"file", l.FileName(slot),
				"error", err,
			)
			symbols = []string{}
		}
		set[slot] = symbols
	}
	return set
}
