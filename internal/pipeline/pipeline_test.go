package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-news-analysis/internal/patterns"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

var testNow = time.Date(2025, 5, 15, 10, 30, 0, 0, resultstore.IST)

type fakeSource struct {
	name  string
	anns  []types.Announcement
	err   error
	calls int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) ([]types.Announcement, error) {
	f.calls++
	return f.anns, f.err
}

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (string, error) {
	f.calls++
	if err := f.errs[url]; err != nil {
		return "", err
	}
	return f.texts[url], nil
}

// keywordAnalyzer labels text containing "profit" Positive and everything else Neutral.
type keywordAnalyzer struct {
	seen []string
}

func (k *keywordAnalyzer) Analyze(ctx context.Context, text string) (types.Scores, string) {
	k.seen = append(k.seen, text)
	if strings.Contains(text, "profit") {
		return types.Scores{Vader: 0.5, TextBlob: 0.4, Combined: 0.3, Confidence: 0.3}, types.Positive
	}
	return types.Scores{}, types.Neutral
}

type fakeCandles struct {
	series map[string][]types.Candle
	calls  map[string]int
}

func (f *fakeCandles) Candles(ctx context.Context, symbol string, from, to time.Time) ([]types.Candle, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	cs, ok := f.series[symbol]
	if !ok {
		return nil, errors.New("unknown instrument")
	}
	return cs, nil
}

func dojiSeries() []types.Candle {
	var cs []types.Candle
	for i := 0; i < 20; i++ {
		cs = append(cs, types.Candle{Open: 100, High: 103, Low: 99, Close: 102, Vol: 1000})
	}
	return append(cs, types.Candle{Open: 100, High: 102, Low: 98, Close: 100.1, Vol: 1000})
}

func sentimentJob(t *testing.T, src *fakeSource, ext *fakeExtractor) (*AnnouncementJob[types.SentimentRecord], Stores) {
	t.Helper()
	stores := NewStores(t.TempDir(), resultstore.Abort)
	job := NewSentimentJob(src, ext, &keywordAnalyzer{}, stores)
	job.now = func() time.Time { return testNow }
	return job, stores
}

func TestSentimentJobAppendsUnseenAnnouncements(t *testing.T) {
	src := &fakeSource{name: "bse", anns: []types.Announcement{
		{Company: "TCS Ltd", Headline: "Results", Time: "2025-05-15 09:01:00", PDFLink: "https://x/a.pdf"},
		{Company: "Infosys Ltd", Headline: "Board meeting", Time: "2025-05-15 09:05:00", PDFLink: "https://x/b.html"},
		{Company: "TCS Ltd", Headline: "Results (dup)", Time: "2025-05-15 09:01:00", PDFLink: "https://x/a.pdf"},
	}}
	ext := &fakeExtractor{texts: map[string]string{"https://x/b.html": "Record PROFIT for the quarter!"}}
	job, stores := sentimentJob(t, src, ext)
	ctx := context.Background()

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Appended)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "bse", report.Job)

	path := stores.Layout.PathFor(resultstore.TagSentiment, testNow)
	assert.Equal(t, path, report.Store)
	assert.True(t, strings.HasSuffix(path, "process_sentiment_analysis_2025-05-15.csv"))

	got := resultstore.Read[types.SentimentRecord](path)
	require.Equal(t, resultstore.Loaded, got.State)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Results", got.Rows[0].Headline, "first occurrence wins")
	assert.Equal(t, types.Neutral, got.Rows[0].FinalSentiment)
	assert.Equal(t, types.Positive, got.Rows[1].FinalSentiment)
	assert.Equal(t, 0.5, got.Rows[1].VaderScore)
	assert.Equal(t, 0.3, got.Rows[1].Confidence)

	// second run: nothing new, no attachment downloads
	extCalls := ext.calls
	report, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Appended)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, extCalls, ext.calls)

	again := resultstore.Read[types.SentimentRecord](path)
	assert.Equal(t, got.Rows, again.Rows)
}

func TestSentimentJobFallsBackToHeadline(t *testing.T) {
	src := &fakeSource{name: "nse", anns: []types.Announcement{
		{Company: "Wipro", Headline: "Net Profit up 20%", Description: "Q4 update", PDFLink: "https://x/w.pdf"},
	}}
	analyzer := &keywordAnalyzer{}
	stores := NewStores(t.TempDir(), resultstore.Abort)
	job := NewSentimentJob(src, &fakeExtractor{}, analyzer, stores)
	job.now = func() time.Time { return testNow }

	_, err := job.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, analyzer.seen, 1)
	assert.Equal(t, "net profit up 20% q4 update", analyzer.seen[0])
}

func TestSentimentJobSkipsFailedExtraction(t *testing.T) {
	src := &fakeSource{name: "bse", anns: []types.Announcement{
		{Company: "A", Headline: "h1", PDFLink: "https://x/1.html"},
		{Company: "B", Headline: "h2", PDFLink: "https://x/2.html"},
		{Company: "C", Headline: "no attachment"},
	}}
	ext := &fakeExtractor{errs: map[string]error{"https://x/1.html": errors.New("503")}}
	job, stores := sentimentJob(t, src, ext)

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Appended)
	assert.Equal(t, 2, report.Failed, "extraction error and missing link")
	assert.Equal(t, 0, report.Skipped)

	got := resultstore.Read[types.SentimentRecord](stores.Layout.PathFor(resultstore.TagSentiment, testNow))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "B", got.Rows[0].Company)
}

func TestSentimentJobCountsUnlinkedAnnouncementsAsFailed(t *testing.T) {
	src := &fakeSource{name: "nse", anns: []types.Announcement{
		{Company: "C", Headline: "no attachment"},
		{Company: "D", Headline: "also none"},
	}}
	job, stores := sentimentJob(t, src, &fakeExtractor{})

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Fetched)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Appended)

	got := resultstore.Read[types.SentimentRecord](stores.Layout.PathFor(resultstore.TagSentiment, testNow))
	assert.Empty(t, got.Rows)
}

func TestSentimentJobFetchError(t *testing.T) {
	src := &fakeSource{name: "nse", err: errors.New("403 Forbidden")}
	job, stores := sentimentJob(t, src, &fakeExtractor{})

	report, err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1, report.Failed)

	got := resultstore.Read[types.SentimentRecord](stores.Layout.PathFor(resultstore.TagSentiment, testNow))
	assert.Equal(t, resultstore.Missing, got.State, "a failed fetch writes nothing")
}

func TestSentimentJobEmptyBatchCreatesHeaderOnlyStore(t *testing.T) {
	job, stores := sentimentJob(t, &fakeSource{name: "bse"}, &fakeExtractor{})

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Appended)

	got := resultstore.Read[types.SentimentRecord](stores.Layout.PathFor(resultstore.TagSentiment, testNow))
	assert.Equal(t, resultstore.Loaded, got.State)
	assert.Empty(t, got.Rows)
}

func TestScreenerJobRecord(t *testing.T) {
	scraped := time.Date(2025, 5, 15, 4, 0, 0, 0, time.UTC)
	src := &fakeSource{name: "screener", anns: []types.Announcement{{
		Company:     "Tata Motors",
		Headline:    "Order win from state transport",
		Time:        "7m ago",
		Link:        "https://www.screener.in/company/TATAMOTORS/#ann-1",
		PDFLink:     "https://www.bseindia.com/xml-data/corpfiling/AttachLive/x.pdf",
		ScrapedAt:   scraped,
		AnnouncedAt: scraped.Add(-7 * time.Minute),
	}}}
	stores := NewStores(t.TempDir(), resultstore.Abort)
	job := NewScreenerJob(src, &fakeExtractor{texts: map[string]string{
		"https://www.bseindia.com/xml-data/corpfiling/AttachLive/x.pdf": "Received an order worth Rs 500 crore; profit outlook improves.",
	}}, &keywordAnalyzer{}, stores)
	job.now = func() time.Time { return testNow }

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Appended)

	got := resultstore.Read[types.ScreenerRecord](stores.Layout.PathFor(resultstore.TagScreener, testNow))
	require.Len(t, got.Rows, 1)
	r := got.Rows[0]
	assert.Equal(t, "2025-05-15 09:30:00", r.ScrapedAt)
	assert.Equal(t, "2025-05-15 09:23:00", r.AnnouncementDatetime)
	assert.Equal(t, "received an order worth rs 500 crore profit outlook improves.", r.AnnouncementDescription)
	assert.Equal(t, types.Positive, r.FinalSentiment)
	assert.Equal(t, "7m ago", r.Time)
}

func writeSentiment(t *testing.T, stores Stores, day time.Time, rows []types.SentimentRecord) {
	t.Helper()
	_, err := stores.Sentiment(day).AppendNew(context.Background(), rows)
	require.NoError(t, err)
}

func TestChartJobDetectsPatternsForPositiveRows(t *testing.T) {
	stores := NewStores(t.TempDir(), resultstore.Abort)
	writeSentiment(t, stores, testNow, []types.SentimentRecord{
		{Company: "TCS Ltd", Headline: "Results", Time: "t1", PDFLink: "p1", FinalSentiment: types.Positive},
		{Company: "Infosys", Headline: "AGM", Time: "t2", PDFLink: "p2", FinalSentiment: types.Neutral},
		{Company: "TCS Ltd", Headline: "Dividend", Time: "t3", PDFLink: "p3", FinalSentiment: types.VeryPositive},
		{Company: "Unknown Co", Headline: "Order", Time: "t4", PDFLink: "p4", FinalSentiment: types.Positive},
	})
	candles := &fakeCandles{series: map[string][]types.Candle{"TCS": dojiSeries()}}
	job := NewChartJob(stores, candles, 90)
	job.now = func() time.Time { return testNow }
	ctx := context.Background()

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Appended)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, candles.calls["TCS"], "candles are fetched once per symbol")

	path := stores.Layout.PathFor(resultstore.TagChartPattern, testNow)
	assert.Contains(t, path, "chart_pattern_detect")
	got := resultstore.Read[types.ChartPatternRecord](path)
	require.Len(t, got.Rows, 2)

	want := patterns.Detect(dojiSeries())
	assert.Equal(t, "Results", got.Rows[0].Headline)
	assert.Equal(t, "Dividend", got.Rows[1].Headline)
	assert.Equal(t, want.ChartPattern(), got.Rows[0].ChartPattern)
	assert.Equal(t, want.TechIndicator(), got.Rows[0].TechIndicator)
	assert.Equal(t, types.VeryPositive, got.Rows[1].FinalSentiment)

	// charted rows are skipped; the failed one is retried
	report, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, candles.calls["TCS"])
	assert.Equal(t, 2, candles.calls["UNKNOWN"])
}

func TestChartJobUsesLatestSentimentStore(t *testing.T) {
	stores := NewStores(t.TempDir(), resultstore.Abort)
	writeSentiment(t, stores, testNow.AddDate(0, 0, -2), []types.SentimentRecord{
		{Company: "OLD", Headline: "old", PDFLink: "o", FinalSentiment: types.Positive},
	})
	writeSentiment(t, stores, testNow.AddDate(0, 0, -1), []types.SentimentRecord{
		{Company: "TCS", Headline: "new", PDFLink: "n", FinalSentiment: types.Positive},
	})
	candles := &fakeCandles{series: map[string][]types.Candle{"TCS": dojiSeries(), "OLD": dojiSeries()}}
	job := NewChartJob(stores, candles, 90)
	job.now = func() time.Time { return testNow }

	_, err := job.Run(context.Background())
	require.NoError(t, err)

	got := resultstore.Read[types.ChartPatternRecord](stores.Layout.PathFor(resultstore.TagChartPattern, testNow))
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "new", got.Rows[0].Headline)
	assert.Zero(t, candles.calls["OLD"])
}

func TestChartJobWithoutSentimentStore(t *testing.T) {
	stores := NewStores(t.TempDir(), resultstore.Abort)
	job := NewChartJob(stores, &fakeCandles{}, 90)

	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Fetched)
	assert.Zero(t, report.Appended)
}

func TestBuildSignals(t *testing.T) {
	rows := []types.ChartPatternRecord{
		{Company: "A", Time: "t1", FinalSentiment: types.VeryPositive, ChartPattern: "Hammer, Doji", TechIndicator: "MACD Crossover"},
		{Company: "B", Time: "t2", FinalSentiment: types.Positive, ChartPattern: "", TechIndicator: "Supertrend"},
		{Company: "C", Time: "t3", FinalSentiment: types.Neutral, ChartPattern: "Bull Flag, Hammer", TechIndicator: "RSI Oversold, Supertrend"},
		{Company: "D", Time: "t4", FinalSentiment: types.Negative},
	}

	got := BuildSignals(rows)
	require.Len(t, got, 4)

	assert.Equal(t, 3, got[0].SentimentScore)
	assert.Equal(t, 2, got[0].ChartCount)
	assert.Equal(t, 1, got[0].IndicatorCount)
	assert.Equal(t, 6, got[0].TotalScore)
	assert.Equal(t, 100.0, got[0].SuccessChance)
	assert.Equal(t, Buy, got[0].Recommendation)

	assert.Equal(t, 3, got[1].TotalScore)
	assert.Equal(t, 50.0, got[1].SuccessChance)
	assert.Equal(t, Sell, got[1].Recommendation)

	assert.Equal(t, 5, got[2].TotalScore)
	assert.Equal(t, 83.33, got[2].SuccessChance)
	assert.Equal(t, Hold, got[2].Recommendation)

	assert.Equal(t, 0, got[3].TotalScore)
	assert.Equal(t, 0.0, got[3].SuccessChance)
	assert.Equal(t, Sell, got[3].Recommendation)
}

func TestBuildSignalsAllZero(t *testing.T) {
	got := BuildSignals([]types.ChartPatternRecord{{Company: "X", FinalSentiment: types.Negative}})
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].SuccessChance)
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, Buy, Recommend(7))
	assert.Equal(t, Buy, Recommend(6))
	assert.Equal(t, Hold, Recommend(5))
	assert.Equal(t, Hold, Recommend(4))
	assert.Equal(t, Sell, Recommend(3))
}

func TestSignalJob(t *testing.T) {
	stores := NewStores(t.TempDir(), resultstore.Abort)
	ctx := context.Background()

	job := NewSignalJob(stores)
	job.now = func() time.Time { return testNow }

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Appended, "no chart store yet")

	_, err = stores.Chart(testNow).Merge(ctx, []types.ChartPatternRecord{
		{Company: "A", Headline: "h1", Time: "t1", FinalSentiment: types.Positive, ChartPattern: "Hammer", TechIndicator: "Supertrend"},
		{Company: "A", Headline: "h2", Time: "t1", FinalSentiment: types.VeryPositive, ChartPattern: "Hammer, Doji", TechIndicator: "Supertrend"},
		{Company: "B", Headline: "h3", Time: "t2", FinalSentiment: types.Positive},
	})
	require.NoError(t, err)

	report, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Fetched)
	assert.Equal(t, 2, report.Appended)

	got := resultstore.Read[types.SignalRecord](stores.Layout.PathFor(resultstore.TagSignals, testNow))
	require.Len(t, got.Rows, 2)
	// (Company, Time) collapses to the last chart row for A
	assert.Equal(t, "A", got.Rows[0].Company)
	assert.Equal(t, 6, got.Rows[0].TotalScore)
	assert.Equal(t, "B", got.Rows[1].Company)
	assert.Equal(t, 2, got.Rows[1].TotalScore)

	// recomputing is stable
	report, err = job.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Appended)
	again := resultstore.Read[types.SignalRecord](stores.Layout.PathFor(resultstore.TagSignals, testNow))
	assert.Equal(t, got.Rows, again.Rows)
}

type countingJob struct {
	runs   atomic.Int32
	err    error
	cancel context.CancelFunc
	stopAt int32
}

func (c *countingJob) Name() string { return "counting" }

func (c *countingJob) Run(ctx context.Context) (types.Report, error) {
	if n := c.runs.Add(1); c.cancel != nil && n == c.stopAt {
		c.cancel()
	}
	return types.Report{Job: "counting"}, c.err
}

func TestWatchRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job := &countingJob{cancel: cancel, stopAt: 2}

	done := make(chan struct{})
	go func() {
		Watch(ctx, 5*time.Millisecond, job)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
	assert.Equal(t, int32(2), job.runs.Load())
}

func TestRunOnceCountsFailures(t *testing.T) {
	ok := &countingJob{}
	bad := &countingJob{err: errors.New("boom")}

	failed := RunOnce(context.Background(), ok, bad, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(2), ok.runs.Load())
	assert.Equal(t, int32(1), bad.runs.Load())
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &countingJob{cancel: cancel, stopAt: 1}
	second := &countingJob{}

	RunOnce(ctx, first, second)
	assert.Equal(t, int32(1), first.runs.Load())
	assert.Equal(t, int32(0), second.runs.Load())
}
