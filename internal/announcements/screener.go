package announcements

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/types"
)

// ScreenerScraper reads the latest blocks of Screener.in's "all announcements" page.
type ScreenerScraper struct {
	pageURL   string
	limit     int
	userAgent string
	timeout   time.Duration
	now       func() time.Time
}

func NewScreenerScraper(pageURL string, limit int, userAgent string, timeout time.Duration) *ScreenerScraper {
	return &ScreenerScraper{
		pageURL:   pageURL,
		limit:     limit,
		userAgent: userAgent,
		timeout:   timeout,
		now:       time.Now,
	}
}

func (s *ScreenerScraper) Name() string { return "screener" }

// Fetch returns up to limit announcements, newest first as listed on the page.
func (s *ScreenerScraper) Fetch(ctx context.Context) ([]types.Announcement, error) {
	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid screener url: %w", err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.userAgent)
	})

	var (
		found     []types.Announcement
		seenCard  bool
		scrapeErr error
	)

	c.OnHTML("div.card.card-medium", func(e *colly.HTMLElement) {
		// only the first card holds the live feed
		if seenCard {
			return
		}
		seenCard = true
		scrapedAt := s.now().In(resultstore.IST)
		e.DOM.ChildrenFiltered("div").EachWithBreak(func(i int, block *goquery.Selection) bool {
			if len(found) >= s.limit {
				return false
			}
			a, ok := parseScreenerBlock(block, e.Request, scrapedAt)
			if !ok {
				logger.Debug(ctx, "Skipping malformed announcement block", "index", i)
				return true
			}
			found = append(found, a)
			return true
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Scraping error", err, "url", r.Request.URL.String(), "status", r.StatusCode)
	})

	if err := c.Visit(s.pageURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", s.pageURL, err)
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, scrapeErr
	}

	logger.Info(ctx, "Screener announcements scraped", "count", len(found))
	return found, nil
}

// parseScreenerBlock reads one announcement: the first link names the company, the last link
// carries the headline with its "7m ago" age and points at the filing.
func parseScreenerBlock(block *goquery.Selection, req *colly.Request, scrapedAt time.Time) (types.Announcement, bool) {
	links := block.Find("a")
	if links.Length() < 2 {
		return types.Announcement{}, false
	}

	company := squeeze(links.First().Text())
	item := links.Last()
	itemText := squeeze(item.Text())
	ago := FindAgo(itemText)
	headline := strings.TrimSpace(strings.Replace(itemText, ago, "", 1))
	href, _ := item.Attr("href")
	if company == "" || headline == "" || href == "" {
		return types.Announcement{}, false
	}

	link := req.AbsoluteURL(href)
	pdfLink := link
	if pdf, ok := block.Find("a[href*='.pdf']").Last().Attr("href"); ok {
		pdfLink = req.AbsoluteURL(pdf)
	}

	return types.Announcement{
		Source:      "screener",
		Company:     company,
		Headline:    headline,
		Time:        ago,
		Link:        link,
		PDFLink:     pdfLink,
		ScrapedAt:   scrapedAt,
		AnnouncedAt: AnnouncementTime(scrapedAt, ago),
	}, true
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
