package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-news-analysis/internal/config"
	"stock-news-analysis/internal/types"
)

func TestStaticIsDeterministic(t *testing.T) {
	s := NewStatic()
	ctx := context.Background()
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0)

	a, err := s.Candles(ctx, "TCS", from, to)
	require.NoError(t, err)
	b, err := s.Candles(ctx, "TCS", from, to)
	require.NoError(t, err)
	other, err := s.Candles(ctx, "INFY", from, to)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0].Close, other[0].Close)

	for i, c := range a {
		wd := time.Unix(c.Ts, 0).UTC().Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
		assert.GreaterOrEqual(t, c.High, c.Low)
		if i > 0 {
			assert.Greater(t, c.Ts, a[i-1].Ts)
		}
	}
}

func TestStaticFixedSeries(t *testing.T) {
	s := NewStatic()
	s.Fixed["ABC"] = []types.Candle{{Ts: 1, Close: 10}}

	cs, err := s.Candles(context.Background(), "ABC", time.Now(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []types.Candle{{Ts: 1, Close: 10}}, cs)
}

func TestNewCandleSource(t *testing.T) {
	cfg := config.Default()

	src, err := NewCandleSource(cfg, &config.Secrets{})
	require.NoError(t, err)
	assert.NotNil(t, src)

	cfg.Patterns.CandleSource = "LIVE"
	_, err = NewCandleSource(cfg, &config.Secrets{})
	assert.Error(t, err)

	src, err = NewCandleSource(cfg, &config.Secrets{KiteAPIKey: "k", KiteAccessToken: "t"})
	require.NoError(t, err)
	assert.NotNil(t, src)
}
