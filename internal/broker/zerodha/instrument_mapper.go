package zerodha

import (
	"strings"
	"sync"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// instrumentMapper maps trading symbols to instrument tokens for one exchange.
type instrumentMapper struct {
	symbolToToken map[string]uint32
	loaded        bool
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]uint32),
	}
}

// load replaces the mapping with the equity instruments of exchange.
func (im *instrumentMapper) load(instruments kiteconnect.Instruments, exchange string) int {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken = make(map[string]uint32, len(instruments))
	for _, inst := range instruments {
		if exchange != "" && !strings.EqualFold(inst.Exchange, exchange) {
			continue
		}
		if inst.InstrumentType != "" && inst.InstrumentType != "EQ" {
			continue
		}
		sym := strings.ToUpper(inst.Tradingsymbol)
		token := uint32(inst.InstrumentToken)
		im.symbolToToken[sym] = token
	}
	im.loaded = true
	return len(im.symbolToToken)
}

func (im *instrumentMapper) isLoaded() bool {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.loaded
}

func (im *instrumentMapper) getToken(symbol string) (uint32, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[strings.ToUpper(symbol)]
	return token, exists
}
