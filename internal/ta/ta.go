package ta

import (
	"math"

	"github.com/cinar/indicator"

	"stock-news-analysis/internal/types"
)

// Series holds candle columns in oldest-first order.
type Series struct {
	Opens, Highs, Lows, Closes, Volumes []float64
}

func SeriesOf(candles []types.Candle) Series {
	s := Series{
		Opens:   make([]float64, len(candles)),
		Highs:   make([]float64, len(candles)),
		Lows:    make([]float64, len(candles)),
		Closes:  make([]float64, len(candles)),
		Volumes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		s.Opens[i] = c.Open
		s.Highs[i] = c.High
		s.Lows[i] = c.Low
		s.Closes[i] = c.Close
		s.Volumes[i] = c.Vol
	}
	return s
}

// SMA of the last n values.
func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// StdDev is the population standard deviation of the last n values.
func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

// Returns are the fractional close-to-close changes; len(closes)-1 values.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}

// Max of vals[from:to].
func Max(vals []float64, from, to int) float64 {
	m := math.Inf(-1)
	for i := max(from, 0); i < to && i < len(vals); i++ {
		m = math.Max(m, vals[i])
	}
	return m
}

// Supertrend returns the supertrend line and a per-candle uptrend flag using
// ATR(period) bands at mult × ATR around the median price.
func Supertrend(highs, lows, closes []float64, period int, mult float64) ([]float64, []bool) {
	n := len(closes)
	if n == 0 || len(highs) != n || len(lows) != n {
		return nil, nil
	}
	_, atr := indicator.Atr(period, highs, lows, closes)

	line := make([]float64, n)
	up := make([]bool, n)
	var finalUpper, finalLower float64

	for i := 0; i < n; i++ {
		mid := (highs[i] + lows[i]) / 2
		basicUpper := mid + mult*atr[i]
		basicLower := mid - mult*atr[i]

		if i == 0 {
			finalUpper, finalLower = basicUpper, basicLower
			up[i] = closes[i] >= mid
		} else {
			if basicUpper < finalUpper || closes[i-1] > finalUpper {
				finalUpper = basicUpper
			}
			if basicLower > finalLower || closes[i-1] < finalLower {
				finalLower = basicLower
			}
			switch {
			case up[i-1] && closes[i] < finalLower:
				up[i] = false
			case !up[i-1] && closes[i] > finalUpper:
				up[i] = true
			default:
				up[i] = up[i-1]
			}
		}

		if up[i] {
			line[i] = finalLower
		} else {
			line[i] = finalUpper
		}
	}
	return line, up
}
