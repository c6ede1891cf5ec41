package sentiment

import (
	"strings"
	"unicode"
)

// Filing vocabulary missing from the VADER lexicon, on its [-4, 4] scale.
// These are merged into the VADER lexicon when the analyzer is built.
var financialValence = map[string]float64{
	// positive
	"achieve": 1.8, "achieved": 1.8, "approve": 1.6, "attain": 1.5, "breakthrough": 2.4,
	"buyback": 1.8, "dividend": 1.5, "enhance": 1.9, "enhanced": 1.9, "exceptional": 2.9,
	"expansion": 1.4, "extraordinary": 2.6, "favourable": 2.1, "grew": 1.5, "higher": 1.1,
	"leader": 1.4, "leading": 1.3, "milestone": 1.9, "outperform": 2.2, "prosper": 2.4,
	"record": 1.2, "surge": 1.8, "surpass": 2.0, "tremendous": 2.6, "upbeat": 2.2,
	"upgrade": 1.8,
	// negative
	"bankruptcy": -3.0, "concern": -1.4, "concerns": -1.4, "decline": -1.5, "declined": -1.5,
	"decrease": -1.2, "default": -2.2, "deteriorate": -2.1, "downgrade": -1.9,
	"downturn": -1.9, "erode": -1.6, "headwind": -1.2, "impair": -1.6, "impairment": -1.7,
	"slow": -1.0, "slowdown": -1.6, "underperform": -2.0, "unfavorable": -2.1,
	"unprofitable": -2.2, "volatile": -1.3, "volatility": -1.1, "writeoff": -1.9,
}

// Phrases that lift the combined score when present anywhere in the text.
var strongPositiveKeywords = []string{
	"acquisition", "record profit", "strong earnings", "merger", "order win",
	"new contracts", "joint venture", "buyback", "dividend", "strategic partnership",
}

// tokenize splits lower-cased text into letter/digit words. Apostrophes are
// dropped so "didn't" and "didnt" tokenize the same.
func tokenize(text string) []string {
	var words []string
	var currentWord strings.Builder

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			currentWord.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			if currentWord.Len() > 0 {
				words = append(words, currentWord.String())
				currentWord.Reset()
			}
		}
	}

	if currentWord.Len() > 0 {
		words = append(words, currentWord.String())
	}

	return words
}

func hasStrongKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range strongPositiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
