package zerodha

import (
	"sync"
	"time"

	"stock-news-analysis/internal/types"
)

// candleCache keeps historical candles per symbol and window so the chart job
// can be re-run within a day without re-fetching from Kite.
type candleCache struct {
	entries map[string][]types.Candle
	mu      sync.RWMutex
}

func newCandleCache() *candleCache {
	return &candleCache{
		entries: make(map[string][]types.Candle),
	}
}

func cacheKey(symbol string, from, to time.Time) string {
	return symbol + "|" + from.Format("2006-01-02") + "|" + to.Format("2006-01-02")
}

func (cc *candleCache) get(symbol string, from, to time.Time) ([]types.Candle, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	candles, ok := cc.entries[cacheKey(symbol, from, to)]
	return candles, ok
}

func (cc *candleCache) put(symbol string, from, to time.Time, candles []types.Candle) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.entries[cacheKey(symbol, from, to)] = candles
}
