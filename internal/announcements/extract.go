package announcements

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"stock-news-analysis/internal/api"
	"stock-news-analysis/internal/datasource"
	"stock-news-analysis/internal/logger"
)

// Extractor turns HTML attachments into readable text. PDFs yield "".
type Extractor struct {
	client *api.Client
	cache  *datasource.Cache
}

func NewExtractor(cache *datasource.Cache, opts ...api.ClientOption) *Extractor {
	return &Extractor{client: api.NewClient(opts...), cache: cache}
}

func (x *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if rawURL == "" || isPDF(rawURL) {
		return "", nil
	}
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	fetch := func(ctx context.Context) ([]byte, error) {
		resp, err := x.client.GET(ctx, rawURL, api.BrowserHeaders())
		if err != nil {
			return nil, err
		}
		if strings.Contains(resp.Headers.Get("Content-Type"), "application/pdf") {
			return []byte{}, nil
		}
		article, err := readability.FromReader(bytes.NewReader(resp.Body), pageURL)
		if err != nil {
			return nil, err
		}
		return []byte(strings.TrimSpace(article.TextContent)), nil
	}

	var data []byte
	if x.cache != nil {
		data, err = x.cache.GetOrFetch(ctx, datasource.MakeKey("text", rawURL), fetch)
	} else {
		data, err = fetch(ctx)
	}
	if err != nil {
		logger.Warn(ctx, "Attachment text extraction failed", "url", rawURL, "error", err)
		return "", err
	}
	return string(data), nil
}

func isPDF(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
