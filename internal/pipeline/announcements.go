package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stock-news-analysis/internal/announcements"
	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

// characters of cleaned attachment text kept in Annoucement_Description
const descriptionChars = 1000

// AnnouncementJob fetches announcements from one source, scores them and
// appends the unseen ones to the day's store.
type AnnouncementJob[T resultstore.Keyed] struct {
	source    interfaces.AnnouncementSource
	extractor interfaces.TextExtractor
	analyzer  interfaces.SentimentAnalyzer
	open      func(day time.Time) interfaces.Appender[T]
	build     func(a types.Announcement, text string, s types.Scores, label string) T
	now       func() time.Time
}

var _ interfaces.Job = (*AnnouncementJob[types.SentimentRecord])(nil)

// NewSentimentJob writes BSE/NSE style rows to the process_sentiment_analysis store.
func NewSentimentJob(source interfaces.AnnouncementSource, extractor interfaces.TextExtractor, analyzer interfaces.SentimentAnalyzer, stores Stores) *AnnouncementJob[types.SentimentRecord] {
	return &AnnouncementJob[types.SentimentRecord]{
		source:    source,
		extractor: extractor,
		analyzer:  analyzer,
		open:      stores.Sentiment,
		build:     sentimentRecord,
		now:       time.Now,
	}
}

// NewScreenerJob writes Screener.in rows to the screener_announcements store.
func NewScreenerJob(source interfaces.AnnouncementSource, extractor interfaces.TextExtractor, analyzer interfaces.SentimentAnalyzer, stores Stores) *AnnouncementJob[types.ScreenerRecord] {
	return &AnnouncementJob[types.ScreenerRecord]{
		source:    source,
		extractor: extractor,
		analyzer:  analyzer,
		open:      stores.Screener,
		build:     screenerRecord,
		now:       time.Now,
	}
}

func (j *AnnouncementJob[T]) Name() string { return j.source.Name() }

func (j *AnnouncementJob[T]) Run(ctx context.Context) (types.Report, error) {
	timer := logger.StartOperation(ctx, "pipeline.Announcements", "source", j.source.Name())
	ctx = timer.GetContext()

	store := j.open(j.now())
	report := types.Report{RunID: uuid.NewString(), Job: j.Name(), Store: store.Path()}

	anns, err := j.source.Fetch(ctx)
	if err != nil {
		report.Failed++
		timer.EndWithError(err)
		return report, fmt.Errorf("fetch %s announcements: %w", j.source.Name(), err)
	}
	report.Fetched = len(anns)

	// Known keys let us skip attachment downloads for rows already stored.
	// AppendNew still does the authoritative de-duplication.
	known := make(map[string]struct{})
	if existing := store.Read(ctx); existing.State == resultstore.Loaded {
		for _, r := range existing.Rows {
			known[r.NaturalKey()] = struct{}{}
		}
	}

	records := make([]T, 0, len(anns))
	for _, a := range anns {
		key := j.build(a, "", types.Scores{}, "").NaturalKey()
		// without a link the row can neither be de-duplicated nor read
		if key == "" {
			report.Failed++
			logger.Warn(ctx, "Announcement has no link, dropping", "company", a.Company, "headline", a.Headline)
			continue
		}
		if _, seen := known[key]; seen {
			report.Skipped++
			continue
		}
		known[key] = struct{}{}

		text, err := j.text(ctx, a)
		if err != nil {
			report.Failed++
			logger.Warn(ctx, "Skipping announcement", "company", a.Company, "link", key, "error", err)
			continue
		}

		scores, label := j.analyzer.Analyze(ctx, text)
		records = append(records, j.build(a, text, scores, label))
	}

	res, err := store.AppendNew(ctx, records)
	if err != nil {
		timer.EndWithError(err)
		return report, err
	}
	report.Appended = res.Appended
	report.Skipped += res.Skipped

	timer.End("appended", report.Appended)
	return report, nil
}

// text is the cleaned attachment text, or the cleaned headline and
// description when the attachment has no extractable text.
func (j *AnnouncementJob[T]) text(ctx context.Context, a types.Announcement) (string, error) {
	if j.extractor != nil {
		link := a.PDFLink
		if link == "" {
			link = a.Link
		}
		raw, err := j.extractor.Extract(ctx, link)
		if err != nil {
			return "", err
		}
		if cleaned := announcements.Clean(raw); cleaned != "" {
			return cleaned, nil
		}
	}
	return announcements.Clean(strings.TrimSpace(a.Headline + " " + a.Description)), nil
}

func sentimentRecord(a types.Announcement, _ string, s types.Scores, label string) types.SentimentRecord {
	return types.SentimentRecord{
		Company:        a.Company,
		Headline:       a.Headline,
		Description:    a.Description,
		Time:           a.Time,
		PDFLink:        a.PDFLink,
		VaderScore:     s.Vader,
		TextblobScore:  s.TextBlob,
		BertSentiment:  s.Model,
		Confidence:     s.Confidence,
		FinalSentiment: label,
	}
}

func screenerRecord(a types.Announcement, text string, s types.Scores, label string) types.ScreenerRecord {
	return types.ScreenerRecord{
		Company:                 a.Company,
		Headline:                a.Headline,
		Time:                    a.Time,
		Link:                    a.Link,
		ScrapedAt:               formatTime(a.ScrapedAt),
		AnnouncementDatetime:    formatTime(a.AnnouncedAt),
		PDFLink:                 a.PDFLink,
		AnnouncementDescription: announcements.Excerpt(text, descriptionChars),
		VaderScore:              s.Vader,
		TextblobScore:           s.TextBlob,
		BertSentiment:           s.Model,
		Confidence:              s.Confidence,
		FinalSentiment:          label,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(resultstore.IST).Format(announcements.DatetimeLayout)
}
