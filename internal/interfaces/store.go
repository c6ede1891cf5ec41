package interfaces

import (
	"context"

	"stock-news-analysis/internal/resultstore"
)

// Appender is a keep-first day store.
type Appender[T any] interface {
	AppendNew(ctx context.Context, records []T) (resultstore.AppendResult, error)
	Read(ctx context.Context) resultstore.ReadResult[T]
	Path() string
}

// Merger is a last-wins day store.
type Merger[T any] interface {
	Merge(ctx context.Context, incoming []T) (resultstore.MergeResult, error)
	Read(ctx context.Context) resultstore.ReadResult[T]
	Path() string
}
