package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/patterns"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

const (
	Buy  = "BUY"
	Hold = "HOLD"
	Sell = "SELL"
)

var sentimentScore = map[string]int{
	types.VeryPositive: 3,
	types.Positive:     2,
	types.Neutral:      1,
}

// SignalJob turns today's chart_pattern store into smart_signals rows.
type SignalJob struct {
	stores Stores
	now    func() time.Time
}

var _ interfaces.Job = (*SignalJob)(nil)

func NewSignalJob(stores Stores) *SignalJob {
	return &SignalJob{stores: stores, now: time.Now}
}

func (j *SignalJob) Name() string { return "signals" }

func (j *SignalJob) Run(ctx context.Context) (types.Report, error) {
	timer := logger.StartOperation(ctx, "pipeline.Signals")
	ctx = timer.GetContext()

	now := j.now()
	signals := j.stores.Signals(now)
	report := types.Report{RunID: uuid.NewString(), Job: j.Name(), Store: signals.Path()}

	chart := j.stores.Chart(now).Read(ctx)
	switch chart.State {
	case resultstore.Corrupt:
		timer.EndWithError(chart.Err)
		return report, chart.Err
	case resultstore.Missing, resultstore.Empty:
		logger.Info(ctx, "No chart patterns for today, no signals to compute")
		timer.End()
		return report, nil
	}
	report.Fetched = len(chart.Rows)

	rows := BuildSignals(chart.Rows)
	if len(rows) == 0 {
		timer.End()
		return report, nil
	}

	res, err := signals.Merge(ctx, rows)
	if err != nil {
		timer.EndWithError(err)
		return report, err
	}
	report.Appended = res.Inserted

	timer.End("inserted", res.Inserted, "updated", res.Updated)
	return report, nil
}

// BuildSignals scores each chart row: sentiment (Very Positive 3, Positive 2,
// Neutral 1, otherwise 0) plus one point per chart pattern and per indicator.
// Success_Chance is the total as a percentage of the best total in the batch.
func BuildSignals(rows []types.ChartPatternRecord) []types.SignalRecord {
	out := make([]types.SignalRecord, 0, len(rows))
	best := 0
	for _, r := range rows {
		s := types.SignalRecord{
			Company:        r.Company,
			Time:           r.Time,
			FinalSentiment: r.FinalSentiment,
			ChartPattern:   r.ChartPattern,
			TechIndicator:  r.TechIndicator,
			SentimentScore: sentimentScore[r.FinalSentiment],
			ChartCount:     len(patterns.SplitList(r.ChartPattern)),
			IndicatorCount: len(patterns.SplitList(r.TechIndicator)),
		}
		s.TotalScore = s.SentimentScore + s.ChartCount + s.IndicatorCount
		s.Recommendation = Recommend(s.TotalScore)
		best = max(best, s.TotalScore)
		out = append(out, s)
	}

	for i := range out {
		if best > 0 {
			out[i].SuccessChance = math.Round(float64(out[i].TotalScore)/float64(best)*100*100) / 100
		}
	}
	return out
}

func Recommend(total int) string {
	switch {
	case total >= 6:
		return Buy
	case total >= 4:
		return Hold
	default:
		return Sell
	}
}
