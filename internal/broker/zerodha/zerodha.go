package zerodha

import (
	"context"
	"errors"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/types"
)

const dayInterval = "day"

var ErrUnknownSymbol = errors.New("symbol not found in instrument list")

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Zerodha serves daily historical candles from Kite Connect.
type Zerodha struct {
	p      Params
	kc     kiteAPI
	mapper *instrumentMapper
	cache  *candleCache
}

var _ interfaces.CandleSource = (*Zerodha)(nil)

func NewZerodha(p Params) (*Zerodha, error) {
	if p.APIKey == "" || p.AccessToken == "" {
		return nil, errors.New("missing API key/access token")
	}
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newWithClient(kc, p), nil
}

func newWithClient(kc kiteAPI, p Params) *Zerodha {
	if p.Exchange == "" {
		p.Exchange = "NSE"
	}
	return &Zerodha{
		p:      p,
		kc:     kc,
		mapper: newInstrumentMapper(),
		cache:  newCandleCache(),
	}
}

func (z *Zerodha) Candles(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	if cached, ok := z.cache.get(symbol, from, to); ok {
		return cached, nil
	}

	token, err := z.resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := z.kc.GetHistoricalData(int(token), dayInterval, from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("historical data for %s: %w", symbol, err)
	}

	candles := make([]types.Candle, 0, len(data))
	for _, d := range data {
		candles = append(candles, types.Candle{
			Ts:    d.Date.Unix(),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}

	z.cache.put(symbol, from, to, candles)
	return candles, nil
}

// resolve loads the exchange instrument list once, then looks up symbol.
func (z *Zerodha) resolve(ctx context.Context, symbol string) (uint32, error) {
	if !z.mapper.isLoaded() {
		instruments, err := z.kc.GetInstrumentsByExchange(z.p.Exchange)
		if err != nil {
			return 0, fmt.Errorf("load %s instruments: %w", z.p.Exchange, err)
		}
		n := z.mapper.load(instruments, z.p.Exchange)
		logger.Info(ctx, "Loaded instrument list", "exchange", z.p.Exchange, "symbols", n)
	}

	token, ok := z.mapper.getToken(symbol)
	if !ok {
		return 0, fmt.Errorf("%s:%s: %w", z.p.Exchange, symbol, ErrUnknownSymbol)
	}
	return token, nil
}
