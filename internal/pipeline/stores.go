package pipeline

import (
	"time"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/resultstore/storeobs"
	"stock-news-analysis/internal/types"
)

// Stores opens the day stores under one output directory, wrapped with
// logging and tracing.
type Stores struct {
	Layout resultstore.Layout
	Policy resultstore.CorruptPolicy
}

func NewStores(root string, policy resultstore.CorruptPolicy) Stores {
	return Stores{Layout: resultstore.NewLayout(root), Policy: policy}
}

func (s Stores) Sentiment(day time.Time) interfaces.Appender[types.SentimentRecord] {
	return storeobs.WrapAppender[types.SentimentRecord](
		resultstore.New[types.SentimentRecord](s.Layout.PathFor(resultstore.TagSentiment, day), s.Policy))
}

func (s Stores) Screener(day time.Time) interfaces.Appender[types.ScreenerRecord] {
	return storeobs.WrapAppender[types.ScreenerRecord](
		resultstore.New[types.ScreenerRecord](s.Layout.PathFor(resultstore.TagScreener, day), s.Policy))
}

func (s Stores) Chart(day time.Time) interfaces.Merger[types.ChartPatternRecord] {
	return storeobs.WrapMerger[types.ChartPatternRecord](
		resultstore.NewMerge[types.ChartPatternRecord](s.Layout.PathFor(resultstore.TagChartPattern, day), s.Policy))
}

func (s Stores) Signals(day time.Time) interfaces.Merger[types.SignalRecord] {
	return storeobs.WrapMerger[types.SignalRecord](
		resultstore.NewMerge[types.SignalRecord](s.Layout.PathFor(resultstore.TagSignals, day), s.Policy))
}
