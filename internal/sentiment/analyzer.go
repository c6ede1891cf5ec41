package sentiment

import (
	"context"
	"strings"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/types"
)

const (
	weightVader    = 0.4
	weightPolarity = 0.3
	weightModel    = 0.3
	keywordBoost   = 0.2
)

// Analyzer scores announcement text with the lexicon scorers and an optional
// language model.
type Analyzer struct {
	scorer   interfaces.ModelScorer
	maxChars int
}

var _ interfaces.SentimentAnalyzer = (*Analyzer)(nil)

// NewAnalyzer builds an analyzer. scorer may be nil, in which case the model
// sub-score is always 0. maxChars caps the text sent to the model (0 = no cap).
func NewAnalyzer(scorer interfaces.ModelScorer, maxChars int) *Analyzer {
	return &Analyzer{scorer: scorer, maxChars: maxChars}
}

// Analyze returns the sub-scores and the sentiment label for text.
func (a *Analyzer) Analyze(ctx context.Context, text string) (types.Scores, string) {
	if strings.TrimSpace(text) == "" {
		return types.Scores{}, types.Neutral
	}

	s := types.Scores{
		Vader:    Compound(text),
		TextBlob: Polarity(text),
		Model:    a.modelScore(ctx, text),
	}

	combined := s.Vader*weightVader + s.TextBlob*weightPolarity + s.Model*weightModel
	if hasStrongKeyword(text) {
		combined += keywordBoost
	}
	s.Combined = clamp(combined, -1, 1)
	s.Confidence = abs(s.Combined)

	return s, Label(s.Combined)
}

// modelScore never fails the analysis: a missing or failing model contributes 0.
func (a *Analyzer) modelScore(ctx context.Context, text string) float64 {
	if a.scorer == nil {
		return 0
	}
	if a.maxChars > 0 && len(text) > a.maxChars {
		text = truncate(text, a.maxChars)
	}
	score, err := a.scorer.Score(ctx, text)
	if err != nil {
		logger.Warn(ctx, "Model score unavailable, using 0", "error", err)
		return 0
	}
	return clamp(score, -1, 1)
}

// Label maps a combined score to its sentiment label.
func Label(combined float64) string {
	switch {
	case combined >= 0.7:
		return types.VeryPositive
	case combined >= 0.1:
		return types.Positive
	case combined <= -0.7:
		return types.VeryNegative
	case combined <= -0.1:
		return types.Negative
	default:
		return types.Neutral
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
