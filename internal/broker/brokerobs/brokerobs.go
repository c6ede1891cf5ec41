package brokerobs

import (
	"context"
	"time"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/trace"
	"stock-news-analysis/internal/types"
)

// observableSource wraps a CandleSource with observability (logging & tracing)
type observableSource struct {
	source interfaces.CandleSource
}

// Compile-time interface check
var _ interfaces.CandleSource = (*observableSource)(nil)

// Wrap wraps a candle source with observability middleware
func Wrap(source interfaces.CandleSource) interfaces.CandleSource {
	return &observableSource{
		source: source,
	}
}

// Candles fetches candles with observability
func (ob *observableSource) Candles(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Candles")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching candles",
		"symbol", symbol,
		"from", from.Format("2006-01-02"),
		"to", to.Format("2006-01-02"),
	)

	candles, err := ob.source.Candles(ctx, symbol, from, to)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch candles", err, "symbol", symbol)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Candles fetched successfully", "symbol", symbol, "count", len(candles))
	return candles, nil
}
