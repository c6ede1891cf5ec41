package noop

import (
	"context"

	"stock-news-analysis/internal/logger"
)

// Scorer is the fallback used when no language model is configured. It always scores 0.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Score(ctx context.Context, text string) (float64, error) {
	logger.Debug(ctx, "Noop scorer called - always returns 0")
	return 0, nil
}
