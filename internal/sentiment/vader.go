package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"
)

// vader is built once: loading the lexicon parses several thousand entries.
var vader = sync.OnceValue(func() *govader.SentimentIntensityAnalyzer {
	sia := govader.NewSentimentIntensityAnalyzer()
	for w, v := range financialValence {
		if _, ok := sia.Lexicon[w]; !ok {
			sia.Lexicon[w] = v
		}
	}
	return sia
})

// Compound is the VADER compound score of text in [-1, 1], over the VADER
// lexicon extended with filing vocabulary.
func Compound(text string) float64 {
	return clamp(vader().PolarityScores(text).Compound, -1, 1)
}
