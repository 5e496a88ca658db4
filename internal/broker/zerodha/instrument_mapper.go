package zerodha

import (
	"sync"
)

// instrumentMapper maps instrument tokens back to trading symbols for ticks.
type instrumentMapper struct {
	tokenToSymbol map[uint32]string
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		tokenToSymbol: make(map[uint32]string),
	}
}

// addMapping records token and reports whether it was new.
func (im *instrumentMapper) addMapping(symbol string, token uint32) bool {
	im.mu.Lock()
	defer im.mu.Unlock()

	if _, exists := im.tokenToSymbol[token]; exists {
		return false
	}
	im.tokenToSymbol[token] = symbol
	return true
}

func (im *instrumentMapper) getSymbol(token uint32) string {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return im.tokenToSymbol[token]
}

func (im *instrumentMapper) getAllTokens() []uint32 {
	im.mu.RLock()
	defer im.mu.RUnlock()

	tokens := make([]uint32, 0, len(im.tokenToSymbol))
	for token := range im.tokenToSymbol {
		tokens = append(tokens, token)
	}
	return tokens
}
