package types

import (
	"strings"
	"time"
)

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Announcement is a scraped corporate filing before scoring.
type Announcement struct {
	Source      string
	Company     string
	Headline    string
	Description string
	Time        string // as shown by the source ("7m ago", "2025-05-15 10:31:02")
	Link        string
	PDFLink     string
	ScrapedAt   time.Time
	AnnouncedAt time.Time
}

// Sentiment labels, ordered from most to least favourable.
const (
	VeryPositive = "Very Positive"
	Positive     = "Positive"
	Neutral      = "Neutral"
	Negative     = "Negative"
	VeryNegative = "Very Negative"
)

// Scores are the sub-scores written alongside each scored announcement.
type Scores struct {
	Vader      float64
	TextBlob   float64
	Model      float64
	Combined   float64
	Confidence float64
}

// SentimentRecord is a row of the process_sentiment_analysis store, keyed by pdf_link.
type SentimentRecord struct {
	Company        string  `csv:"Company" json:"company"`
	Headline       string  `csv:"Headline" json:"headline"`
	Description    string  `csv:"Description" json:"description"`
	Time           string  `csv:"Time" json:"time"`
	PDFLink        string  `csv:"pdf_link" json:"pdf_link"`
	VaderScore     float64 `csv:"vader_score" json:"vader_score"`
	TextblobScore  float64 `csv:"textblob_score" json:"textblob_score"`
	BertSentiment  float64 `csv:"bert_sentiment" json:"bert_sentiment"`
	Confidence     float64 `csv:"confidence" json:"confidence"`
	FinalSentiment string  `csv:"final_sentiment" json:"final_sentiment"`
}

func (r SentimentRecord) NaturalKey() string { return r.PDFLink }

// ScreenerRecord is a row of the screener_announcements store, keyed by Link.
type ScreenerRecord struct {
	Company                 string  `csv:"Company" json:"company"`
	Headline                string  `csv:"Headline" json:"headline"`
	Time                    string  `csv:"Time" json:"time"`
	Link                    string  `csv:"Link" json:"link"`
	ScrapedAt               string  `csv:"Scraped_At" json:"scraped_at"`
	AnnouncementDatetime    string  `csv:"Announcement_Datetime" json:"announcement_datetime"`
	PDFLink                 string  `csv:"pdf_link" json:"pdf_link"`
	AnnouncementDescription string  `csv:"Annoucement_Description" json:"announcement_description"`
	VaderScore              float64 `csv:"vader_score" json:"vader_score"`
	TextblobScore           float64 `csv:"textblob_score" json:"textblob_score"`
	BertSentiment           float64 `csv:"bert_sentiment" json:"bert_sentiment"`
	Confidence              float64 `csv:"confidence" json:"confidence"`
	FinalSentiment          string  `csv:"final_sentiment" json:"final_sentiment"`
}

func (r ScreenerRecord) NaturalKey() string { return r.Link }

// ChartPatternRecord is a scored announcement enriched with detected patterns.
type ChartPatternRecord struct {
	Company        string  `csv:"Company" json:"company"`
	Headline       string  `csv:"Headline" json:"headline"`
	Description    string  `csv:"Description" json:"description"`
	Time           string  `csv:"Time" json:"time"`
	PDFLink        string  `csv:"pdf_link" json:"pdf_link"`
	VaderScore     float64 `csv:"vader_score" json:"vader_score"`
	TextblobScore  float64 `csv:"textblob_score" json:"textblob_score"`
	BertSentiment  float64 `csv:"bert_sentiment" json:"bert_sentiment"`
	Confidence     float64 `csv:"confidence" json:"confidence"`
	FinalSentiment string  `csv:"final_sentiment" json:"final_sentiment"`
	ChartPattern   string  `csv:"Chart_Pattern" json:"chart_pattern"`
	TechIndicator  string  `csv:"Tech_Indicator" json:"tech_indicator"`
}

func (r ChartPatternRecord) NaturalKey() string {
	return JoinKey(r.Company, r.Headline, r.ChartPattern, r.TechIndicator)
}

// SourceKey identifies the announcement a chart row was derived from.
func (r ChartPatternRecord) SourceKey() string {
	return JoinKey(r.Company, r.Headline, r.Description, r.Time, r.PDFLink)
}

// SourceKey on a sentiment row matches ChartPatternRecord.SourceKey for the same announcement.
func (r SentimentRecord) SourceKey() string {
	return JoinKey(r.Company, r.Headline, r.Description, r.Time, r.PDFLink)
}

// SignalRecord is a smart trade signal, keyed by (Company, Time).
type SignalRecord struct {
	Company        string  `csv:"Company" json:"company"`
	Time           string  `csv:"Time" json:"time"`
	FinalSentiment string  `csv:"final_sentiment" json:"final_sentiment"`
	ChartPattern   string  `csv:"Chart_Pattern" json:"chart_pattern"`
	TechIndicator  string  `csv:"Tech_Indicator" json:"tech_indicator"`
	SentimentScore int     `csv:"Sentiment_Score" json:"sentiment_score"`
	ChartCount     int     `csv:"Chart_Count" json:"chart_count"`
	IndicatorCount int     `csv:"Indicator_Count" json:"indicator_count"`
	TotalScore     int     `csv:"Total_Score" json:"total_score"`
	SuccessChance  float64 `csv:"Success_Chance" json:"success_chance"`
	Recommendation string  `csv:"Recommendation" json:"recommendation"`
}

func (r SignalRecord) NaturalKey() string { return JoinKey(r.Company, r.Time) }

// JoinKey builds a composite key; the unit separator cannot appear in scraped text.
func JoinKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

// Report summarises one job run.
type Report struct {
	RunID    string `json:"run_id"`
	Job      string `json:"job"`
	Store    string `json:"store"`
	Fetched  int    `json:"fetched"`
	Appended int    `json:"appended"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}
