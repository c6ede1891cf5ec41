package announcements

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"stock-news-analysis/internal/api"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

const (
	bseAttachBase = "https://www.bseindia.com/xml-data/corpfiling/AttachLive/"
	bseMaxPages   = 20
)

var bseCompanyRe = regexp.MustCompile(`^(.*?)\s+-\s+\d{6}\s+-`)

// BSEClient lists a day's announcements of one category from the BSE India API.
type BSEClient struct {
	client      *api.Client
	category    string
	subcategory string
	dayOffset   int
	now         func() time.Time
}

// NewBSEClient builds a client for baseURL (https://api.bseindia.com). dayOffset selects
// which day Fetch reads: 0 is today, 1 is yesterday.
func NewBSEClient(baseURL, category, subcategory string, dayOffset int, opts ...api.ClientOption) *BSEClient {
	opts = append([]api.ClientOption{api.WithBaseURL(baseURL)}, opts...)
	return &BSEClient{
		client:      api.NewClient(opts...),
		category:    category,
		subcategory: subcategory,
		dayOffset:   dayOffset,
		now:         time.Now,
	}
}

func (b *BSEClient) Name() string { return "bse" }

func (b *BSEClient) Fetch(ctx context.Context) ([]types.Announcement, error) {
	return b.FetchDay(ctx, b.now().In(resultstore.IST).AddDate(0, 0, -b.dayOffset))
}

type bseResponse struct {
	Table []struct {
		NewsSub        string `json:"NEWSSUB"`
		Headline       string `json:"HEADLINE"`
		DisseminatedAt string `json:"DT_TM"`
		NewsDate       string `json:"NEWS_DT"`
		Attachment     string `json:"ATTACHMENTNAME"`
		LongName       string `json:"SLONGNAME"`
	} `json:"Table"`
	Table1 []struct {
		RowCount int `json:"ROWCNT"`
	} `json:"Table1"`
}

// FetchDay pages through every announcement disseminated on day.
// Rows without an attachment are skipped.
func (b *BSEClient) FetchDay(ctx context.Context, day time.Time) ([]types.Announcement, error) {
	stamp := day.In(resultstore.IST).Format("20060102")
	scrapedAt := b.now().In(resultstore.IST)

	var out []types.Announcement
	seen := 0
	for page := 1; page <= bseMaxPages; page++ {
		q := url.Values{}
		q.Set("pageno", strconv.Itoa(page))
		q.Set("strCat", b.category)
		q.Set("subcategory", b.subcategory)
		q.Set("strPrevDate", stamp)
		q.Set("strToDate", stamp)
		q.Set("strScrip", "")
		q.Set("strSearch", "P")
		q.Set("strType", "C")

		req := api.NewRequest(http.MethodGet, "/BseIndiaAPI/api/AnnSubCategoryGetData/w?"+q.Encode()).WithContext(ctx)
		for k, v := range api.BSEHeaders() {
			req.WithHeader(k, v)
		}
		resp, err := b.client.DoWithRetry(req, api.DefaultRetryConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch BSE announcements: %w", err)
		}

		var body bseResponse
		if err := resp.ParseJSON(&body); err != nil {
			return nil, err
		}
		if len(body.Table) == 0 {
			break
		}

		for _, row := range body.Table {
			seen++
			if row.Attachment == "" {
				logger.Warn(ctx, "PDF link missing, skipping", "subject", row.NewsSub)
				continue
			}
			company, headline := splitBSESubject(row.NewsSub)
			if company == "Unknown" && row.LongName != "" {
				company = row.LongName
			}
			at := parseBSETime(row.DisseminatedAt)
			timeStr := row.DisseminatedAt
			if !at.IsZero() {
				timeStr = at.Format(DatetimeLayout)
			}
			pdf := bseAttachBase + row.Attachment
			out = append(out, types.Announcement{
				Source:      "bse",
				Company:     company,
				Headline:    headline,
				Description: strings.TrimSpace(row.Headline),
				Time:        timeStr,
				Link:        pdf,
				PDFLink:     pdf,
				ScrapedAt:   scrapedAt,
				AnnouncedAt: at,
			})
		}

		if len(body.Table1) > 0 && seen >= body.Table1[0].RowCount {
			break
		}
	}

	logger.Info(ctx, "BSE announcements fetched", "day", stamp, "count", len(out))
	return out, nil
}

// splitBSESubject parses "ACME LTD - 500001 - Financial Results" into company and headline.
func splitBSESubject(subject string) (company, headline string) {
	company = "Unknown"
	if m := bseCompanyRe.FindStringSubmatch(subject); m != nil {
		company = strings.TrimSpace(m[1])
	}
	parts := strings.Split(subject, " - ")
	headline = strings.TrimSpace(subject)
	if len(parts) > 1 {
		headline = strings.TrimSpace(parts[len(parts)-1])
	}
	return company, headline
}

func parseBSETime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.999", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, resultstore.IST); err == nil {
			return t
		}
	}
	return time.Time{}
}
