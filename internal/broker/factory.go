package broker

import (
	"fmt"

	"stock-news-analysis/internal/broker/brokerobs"
	"stock-news-analysis/internal/broker/zerodha"
	"stock-news-analysis/internal/config"
	"stock-news-analysis/internal/interfaces"
)

// NewCandleSource picks the candle source named by patterns.candle_source and
// wraps it with logging and tracing. LIVE requires Kite credentials.
func NewCandleSource(cfg *config.Config, secrets *config.Secrets) (interfaces.CandleSource, error) {
	switch cfg.Patterns.CandleSource {
	case "LIVE":
		if secrets == nil || !secrets.HasKite() {
			return nil, fmt.Errorf("candle_source LIVE needs KITE_API_KEY and KITE_ACCESS_TOKEN")
		}
		z, err := zerodha.NewZerodha(zerodha.Params{
			APIKey:      secrets.KiteAPIKey,
			AccessToken: secrets.KiteAccessToken,
			Exchange:    cfg.Patterns.Exchange,
		})
		if err != nil {
			return nil, err
		}
		return brokerobs.Wrap(z), nil
	default:
		return brokerobs.Wrap(NewStatic()), nil
	}
}
