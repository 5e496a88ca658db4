package prices

import (
	"sync"
)

// Map holds the last traded price per symbol. The poller and the live ticker
// write to it while order placement reads it, so every access goes through mu.
// Entries are never evicted: a failed fetch leaves the previous price in place.
type Map struct {
	prices map[string]float64
	mu     sync.RWMutex
}

func NewMap() *Map {
	return &Map{
		prices: make(map[string]float64),
	}
}

func (m *Map) Set(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prices[symbol] = price
}

// Get returns the cached price and whether the symbol was ever priced.
func (m *Map) Get(symbol string) (float64, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	price, ok := m.prices[symbol]
	return price, ok
}

// Snapshot copies the current contents.
func (m *Map) Snapshot() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]float64, len(m.prices))
	for symbol, price := range m.prices {
		out[symbol] = price
	}
	return out
}

func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.prices)
}
