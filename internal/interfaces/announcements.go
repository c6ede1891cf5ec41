package interfaces

import (
	"context"

	"stock-news-analysis/internal/types"
)

type AnnouncementSource interface {
	Name() string
	Fetch(ctx context.Context) ([]types.Announcement, error)
}

// TextExtractor returns readable text for an attachment URL, or "" when it has none.
type TextExtractor interface {
	Extract(ctx context.Context, url string) (string, error)
}
