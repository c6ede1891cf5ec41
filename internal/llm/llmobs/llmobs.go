package llmobs

import (
	"context"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/trace"
)

// observableScorer wraps a ModelScorer with logging & tracing
type observableScorer struct {
	scorer interfaces.ModelScorer
}

var _ interfaces.ModelScorer = (*observableScorer)(nil)

func Wrap(scorer interfaces.ModelScorer) interfaces.ModelScorer {
	return &observableScorer{scorer: scorer}
}

func (os *observableScorer) Score(ctx context.Context, text string) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Score")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting model sentiment score", "chars", len(text))

	score, err := os.scorer.Score(ctx, text)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Model sentiment scoring failed", err, "chars", len(text))
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Model sentiment score received", "score", score)
	return score, nil
}
