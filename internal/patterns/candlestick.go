package patterns

import (
	"math"

	"stock-news-analysis/internal/ta"
	"stock-news-analysis/internal/types"
)

// Pattern and indicator names as written to the Chart_Pattern and
// Tech_Indicator columns.
const (
	BullishEngulfing   = "Bullish Engulfing"
	Hammer             = "Hammer"
	Marubozu           = "Marubozu"
	Doji               = "Doji"
	BullFlag           = "Bull Flag"
	ResistanceBreakout = "Resistance Breakout"
	VolumeSpike        = "Volume Spike"

	MACDCrossover = "MACD Crossover"
	RSIOversold   = "RSI Oversold"
	RSIOverbought = "RSI Overbought"
	Supertrend    = "Supertrend"
)

const (
	candleWindow = 15
	flagWindow   = 10
	// std-dev of daily returns below which the last flagWindow candles count as a flag
	flagMaxStdDev   = 0.015
	breakoutWindow  = 20
	volumeSpikeMult = 2.0
)

// DetectCandlestick scans the last 15 candles for single and two-candle
// patterns. Names are returned once each, in order of first occurrence.
func DetectCandlestick(candles []types.Candle) []string {
	start := max(len(candles)-candleWindow, 0)

	var found []string
	for i := start; i < len(candles); i++ {
		c := candles[i]
		if i > 0 && isBullishEngulfing(candles[i-1], c) {
			found = appendUnique(found, BullishEngulfing)
		}
		if isHammer(c) {
			found = appendUnique(found, Hammer)
		}
		if isMarubozu(c) {
			found = appendUnique(found, Marubozu)
		}
		if isDoji(c) {
			found = appendUnique(found, Doji)
		}
	}
	return found
}

func isBullishEngulfing(prev, cur types.Candle) bool {
	return prev.Close < prev.Open &&
		cur.Close > cur.Open &&
		cur.Open <= prev.Close &&
		cur.Close >= prev.Open
}

func isHammer(c types.Candle) bool {
	body := math.Abs(c.Close - c.Open)
	lowerShadow := math.Min(c.Open, c.Close) - c.Low
	upperShadow := c.High - math.Max(c.Open, c.Close)
	return body > 0 && lowerShadow >= 2*body && upperShadow <= body
}

func isMarubozu(c types.Candle) bool {
	rng := c.High - c.Low
	return rng > 0 && math.Abs(c.Close-c.Open) >= 0.95*rng
}

func isDoji(c types.Candle) bool {
	rng := c.High - c.Low
	return rng > 0 && math.Abs(c.Close-c.Open) <= 0.1*rng
}

// DetectFlag reports a Bull Flag when the last ten daily returns are tight
// (population std-dev under 1.5%).
func DetectFlag(candles []types.Candle) []string {
	if len(candles) < flagWindow+1 {
		return nil
	}
	closes := ta.SeriesOf(candles[len(candles)-flagWindow-1:]).Closes
	if ta.StdDev(ta.Returns(closes), flagWindow) < flagMaxStdDev {
		return []string{BullFlag}
	}
	return nil
}

// DetectBreakout reports a Resistance Breakout when the last close clears the
// highest high of the prior 20 candles, and a Volume Spike when the last volume
// is at least twice the prior 20-candle average.
func DetectBreakout(candles []types.Candle) []string {
	if len(candles) < breakoutWindow+1 {
		return nil
	}
	s := ta.SeriesOf(candles)
	last := len(candles) - 1

	var found []string
	if s.Closes[last] > ta.Max(s.Highs, last-breakoutWindow, last) {
		found = append(found, ResistanceBreakout)
	}
	avgVol := ta.SMA(s.Volumes[:last], breakoutWindow)
	if avgVol > 0 && s.Volumes[last] >= volumeSpikeMult*avgVol {
		found = append(found, VolumeSpike)
	}
	return found
}

func appendUnique(list []string, name string) []string {
	for _, v := range list {
		if v == name {
			return list
		}
	}
	return append(list, name)
}
