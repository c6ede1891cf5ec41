package interfaces

import (
	"context"

	"stock-news-analysis/internal/types"
)

// ModelScorer returns a sentiment score in [-1, 1] from a language model.
type ModelScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

type SentimentAnalyzer interface {
	Analyze(ctx context.Context, text string) (types.Scores, string)
}
