package interfaces

import (
	"context"
	"time"

	"stock-news-analysis/internal/types"
)

// CandleSource returns daily candles for an exchange symbol, oldest first.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error)
}
