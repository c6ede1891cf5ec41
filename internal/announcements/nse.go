package announcements

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"stock-news-analysis/internal/api"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

// NSEClient reads NSE corporate announcements for equities.
type NSEClient struct {
	client *api.Client
	now    func() time.Time
}

// NewNSEClient keeps a cookie jar: NSE rejects API calls without the session cookies set
// by its home page.
func NewNSEClient(baseURL string, opts ...api.ClientOption) *NSEClient {
	opts = append([]api.ClientOption{api.WithBaseURL(baseURL), api.WithCookieJar()}, opts...)
	return &NSEClient{client: api.NewClient(opts...), now: time.Now}
}

func (n *NSEClient) Name() string { return "nse" }

func (n *NSEClient) Fetch(ctx context.Context) ([]types.Announcement, error) {
	return n.FetchDay(ctx, n.now())
}

type nseAnnouncement struct {
	Symbol      string `json:"symbol"`
	Company     string `json:"sm_name"`
	Subject     string `json:"desc"`
	Text        string `json:"attchmntText"`
	Attachment  string `json:"attchmntFile"`
	Disseminate string `json:"an_dt"`
}

func (n *NSEClient) FetchDay(ctx context.Context, day time.Time) ([]types.Announcement, error) {
	// warm up the session; failures surface on the real call
	if _, err := n.client.GET(ctx, "/", api.BrowserHeaders()); err != nil {
		logger.Warn(ctx, "NSE session warm-up failed", "error", err)
	}

	stamp := day.In(resultstore.IST).Format("02-01-2006")
	q := url.Values{}
	q.Set("index", "equities")
	q.Set("from_date", stamp)
	q.Set("to_date", stamp)

	resp, err := n.client.GET(ctx, "/api/corporate-announcements?"+q.Encode(), api.NSEHeaders())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch NSE announcements: %w", err)
	}

	var rows []nseAnnouncement
	if err := resp.ParseJSON(&rows); err != nil {
		return nil, err
	}

	scrapedAt := n.now().In(resultstore.IST)
	out := make([]types.Announcement, 0, len(rows))
	for _, r := range rows {
		if r.Attachment == "" {
			continue
		}
		company := strings.TrimSpace(r.Company)
		if company == "" {
			company = r.Symbol
		}
		at, _ := time.ParseInLocation("02-Jan-2006 15:04:05", r.Disseminate, resultstore.IST)
		out = append(out, types.Announcement{
			Source:      "nse",
			Company:     company,
			Headline:    strings.TrimSpace(r.Subject),
			Description: strings.TrimSpace(r.Text),
			Time:        r.Disseminate,
			Link:        r.Attachment,
			PDFLink:     r.Attachment,
			ScrapedAt:   scrapedAt,
			AnnouncedAt: at,
		})
	}

	logger.Info(ctx, "NSE announcements fetched", "day", stamp, "count", len(out))
	return out, nil
}
