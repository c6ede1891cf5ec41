package interfaces

import (
	"context"

	"stock-news-analysis/internal/types"
)

// Job is one scheduled unit of work in the watch loop.
type Job interface {
	Name() string
	Run(ctx context.Context) (types.Report, error)
}
