package patterns

import (
	"regexp"
	"strings"

	"stock-news-analysis/internal/types"
)

// Result is what the chart job stores per company.
type Result struct {
	Patterns   []string
	Indicators []string
}

// ChartPattern is the comma-joined Chart_Pattern column value.
func (r Result) ChartPattern() string { return strings.Join(r.Patterns, ", ") }

// TechIndicator is the comma-joined Tech_Indicator column value.
func (r Result) TechIndicator() string { return strings.Join(r.Indicators, ", ") }

// Detect runs every detector over candles (oldest first).
func Detect(candles []types.Candle) Result {
	var res Result
	for _, group := range [][]string{
		DetectCandlestick(candles),
		DetectFlag(candles),
		DetectBreakout(candles),
	} {
		for _, name := range group {
			res.Patterns = appendUnique(res.Patterns, name)
		}
	}
	res.Indicators = DetectIndicators(candles)
	return res
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// CleanSymbol turns a company name into a best-guess exchange symbol:
// upper-cased, punctuation removed, first word only.
// "Reliance Industries Ltd." → "RELIANCE".
func CleanSymbol(raw string) string {
	fields := strings.Fields(nonWord.ReplaceAllString(strings.ToUpper(raw), ""))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// SplitList splits a Chart_Pattern / Tech_Indicator value back into names.
// An empty value has no names.
func SplitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return strings.Split(v, ", ")
}
