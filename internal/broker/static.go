package broker

import (
	"context"
	"hash/fnv"
	"math/rand"
	"time"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/types"
)

// Static produces synthetic daily candles for dry runs. The series for a
// symbol is deterministic so repeated runs detect the same patterns.
type Static struct {
	Fixed map[string][]types.Candle
}

var _ interfaces.CandleSource = (*Static)(nil)

func NewStatic() *Static {
	return &Static{Fixed: make(map[string][]types.Candle)}
}

func (s *Static) Candles(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	if cs, ok := s.Fixed[symbol]; ok {
		return cs, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	base := 100 + rng.Float64()*900
	var cs []types.Candle
	for d := from.Truncate(24 * time.Hour); !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		o := base
		c := o * (1 + (rng.Float64()-0.48)*0.04)
		hi := max(o, c) * (1 + rng.Float64()*0.01)
		lo := min(o, c) * (1 - rng.Float64()*0.01)
		cs = append(cs, types.Candle{
			Ts:    d.Unix(),
			Open:  o,
			High:  hi,
			Low:   lo,
			Close: c,
			Vol:   50000 + rng.Float64()*100000,
		})
		base = c
	}

	logger.Debug(ctx, "Generated static candles", "symbol", symbol, "count", len(cs))
	return cs, nil
}
