package patterns

import (
	"github.com/cinar/indicator"

	"stock-news-analysis/internal/ta"
	"stock-news-analysis/internal/types"
)

const (
	// MACD(12,26,9) needs the slow EMA warmed up before a crossover means anything
	minIndicatorCandles = 35
	crossoverLookback   = 3
	rsiOversold         = 30
	rsiOverbought       = 70
	supertrendPeriod    = 10
	supertrendMult      = 3
)

// DetectIndicators returns the technical signals present on the latest candle:
// a MACD/signal crossover within the last three candles (either direction),
// RSI(14) oversold or overbought, and a Supertrend(10,3) uptrend.
func DetectIndicators(candles []types.Candle) []string {
	if len(candles) < minIndicatorCandles {
		return nil
	}
	s := ta.SeriesOf(candles)

	var found []string

	macd, signal := indicator.Macd(s.Closes)
	if crossed(macd, signal, crossoverLookback) {
		found = append(found, MACDCrossover)
	}

	_, rsi := indicator.Rsi(s.Closes)
	if n := len(rsi); n > 0 {
		switch last := rsi[n-1]; {
		case last < rsiOversold:
			found = append(found, RSIOversold)
		case last > rsiOverbought:
			found = append(found, RSIOverbought)
		}
	}

	_, up := ta.Supertrend(s.Highs, s.Lows, s.Closes, supertrendPeriod, supertrendMult)
	if n := len(up); n > 0 && up[n-1] {
		found = append(found, Supertrend)
	}

	return found
}

// crossed reports whether a and b swapped order within the last lookback steps.
func crossed(a, b []float64, lookback int) bool {
	n := min(len(a), len(b))
	for i := max(n-lookback, 1); i < n; i++ {
		prev := a[i-1] - b[i-1]
		cur := a[i] - b[i]
		if (prev <= 0 && cur > 0) || (prev >= 0 && cur < 0) {
			return true
		}
	}
	return false
}
