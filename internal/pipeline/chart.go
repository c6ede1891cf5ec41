package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/patterns"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

// ChartJob detects chart patterns for positively scored announcements in the
// latest sentiment store and merges them into today's chart_pattern store.
type ChartJob struct {
	stores       Stores
	candles      interfaces.CandleSource
	lookbackDays int
	now          func() time.Time
}

var _ interfaces.Job = (*ChartJob)(nil)

func NewChartJob(stores Stores, candles interfaces.CandleSource, lookbackDays int) *ChartJob {
	return &ChartJob{
		stores:       stores,
		candles:      candles,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (j *ChartJob) Name() string { return "chart" }

type detection struct {
	result patterns.Result
	err    error
}

func (j *ChartJob) Run(ctx context.Context) (types.Report, error) {
	timer := logger.StartOperation(ctx, "pipeline.Chart")
	ctx = timer.GetContext()

	now := j.now()
	chart := j.stores.Chart(now)
	report := types.Report{RunID: uuid.NewString(), Job: j.Name(), Store: chart.Path()}

	srcPath, srcDay, ok, err := j.stores.Layout.Latest(resultstore.TagSentiment)
	if err != nil {
		timer.EndWithError(err)
		return report, fmt.Errorf("find latest sentiment store: %w", err)
	}
	if !ok {
		logger.Info(ctx, "No sentiment store yet, nothing to chart")
		timer.End()
		return report, nil
	}

	src := resultstore.Read[types.SentimentRecord](srcPath)
	if src.State == resultstore.Corrupt {
		timer.EndWithError(src.Err)
		return report, src.Err
	}

	existing := chart.Read(ctx)
	if existing.State == resultstore.Corrupt {
		timer.EndWithError(existing.Err)
		return report, existing.Err
	}
	done := make(map[string]struct{}, len(existing.Rows))
	for _, r := range existing.Rows {
		done[r.SourceKey()] = struct{}{}
	}

	from := now.AddDate(0, 0, -j.lookbackDays)
	bySymbol := make(map[string]detection)
	var records []types.ChartPatternRecord

	for _, r := range src.Rows {
		if r.FinalSentiment != types.Positive && r.FinalSentiment != types.VeryPositive {
			continue
		}
		if _, seen := done[r.SourceKey()]; seen {
			report.Skipped++
			continue
		}
		done[r.SourceKey()] = struct{}{}
		report.Fetched++

		symbol := patterns.CleanSymbol(r.Company)
		if symbol == "" {
			report.Failed++
			continue
		}
		d, cached := bySymbol[symbol]
		if !cached {
			cs, err := j.candles.Candles(ctx, symbol, from, now)
			d = detection{err: err}
			if err == nil {
				d.result = patterns.Detect(cs)
			}
			bySymbol[symbol] = d
		}
		if d.err != nil {
			report.Failed++
			logger.Warn(ctx, "No candles for company, skipping", "company", r.Company, "symbol", symbol, "error", d.err)
			continue
		}

		records = append(records, chartRecord(r, d.result))
	}

	if len(records) == 0 {
		logger.Info(ctx, "No new positive announcements to chart", "source", srcPath, "skipped", report.Skipped)
		timer.End()
		return report, nil
	}

	res, err := chart.Merge(ctx, records)
	if err != nil {
		timer.EndWithError(err)
		return report, err
	}
	report.Appended = res.Inserted

	timer.End("source_day", resultstore.Day(srcDay), "inserted", res.Inserted, "updated", res.Updated)
	return report, nil
}

func chartRecord(r types.SentimentRecord, res patterns.Result) types.ChartPatternRecord {
	return types.ChartPatternRecord{
		Company:        r.Company,
		Headline:       r.Headline,
		Description:    r.Description,
		Time:           r.Time,
		PDFLink:        r.PDFLink,
		VaderScore:     r.VaderScore,
		TextblobScore:  r.TextblobScore,
		BertSentiment:  r.BertSentiment,
		Confidence:     r.Confidence,
		FinalSentiment: r.FinalSentiment,
		ChartPattern:   res.ChartPattern(),
		TechIndicator:  res.TechIndicator(),
	}
}
