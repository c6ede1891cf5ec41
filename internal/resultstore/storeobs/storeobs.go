package storeobs

import (
	"context"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/trace"
)

type observableAppender[T any] struct {
	store interfaces.Appender[T]
}

var _ interfaces.Appender[int] = (*observableAppender[int])(nil)

func WrapAppender[T any](store interfaces.Appender[T]) interfaces.Appender[T] {
	return &observableAppender[T]{store: store}
}

func (o *observableAppender[T]) AppendNew(ctx context.Context, records []T) (resultstore.AppendResult, error) {
	ctx, span := trace.StartSpan(ctx, "resultstore.AppendNew")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Appending batch to store",
		"path", o.store.Path(),
		"records", len(records),
	)

	res, err := o.store.AppendNew(ctx, records)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Store append failed", err,
			"path", o.store.Path(),
			"records", len(records),
		)
		return res, err
	}

	if res.Appended == 0 && !res.Created {
		logger.InfoSkip(ctx, 1, "No new records for store",
			"path", o.store.Path(),
			"skipped", res.Skipped,
		)
		return res, nil
	}

	logger.InfoSkip(ctx, 1, "Store updated",
		"path", o.store.Path(),
		"appended", res.Appended,
		"skipped", res.Skipped,
		"created", res.Created,
	)
	return res, nil
}

func (o *observableAppender[T]) Read(ctx context.Context) resultstore.ReadResult[T] {
	return observeRead(ctx, o.store.Path(), o.store.Read)
}

func (o *observableAppender[T]) Path() string {
	return o.store.Path()
}

type observableMerger[T any] struct {
	store interfaces.Merger[T]
}

var _ interfaces.Merger[int] = (*observableMerger[int])(nil)

func WrapMerger[T any](store interfaces.Merger[T]) interfaces.Merger[T] {
	return &observableMerger[T]{store: store}
}

func (o *observableMerger[T]) Merge(ctx context.Context, incoming []T) (resultstore.MergeResult, error) {
	ctx, span := trace.StartSpan(ctx, "resultstore.Merge")
	defer span.End()

	res, err := o.store.Merge(ctx, incoming)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Store merge failed", err,
			"path", o.store.Path(),
			"records", len(incoming),
		)
		return res, err
	}

	logger.InfoSkip(ctx, 1, "Store merged",
		"path", o.store.Path(),
		"inserted", res.Inserted,
		"updated", res.Updated,
		"total", res.Total,
	)
	return res, nil
}

func (o *observableMerger[T]) Read(ctx context.Context) resultstore.ReadResult[T] {
	return observeRead(ctx, o.store.Path(), o.store.Read)
}

func (o *observableMerger[T]) Path() string {
	return o.store.Path()
}

func observeRead[T any](ctx context.Context, path string, read func(context.Context) resultstore.ReadResult[T]) resultstore.ReadResult[T] {
	ctx, span := trace.StartSpan(ctx, "resultstore.Read")
	defer span.End()

	res := read(ctx)
	if res.State == resultstore.Corrupt {
		logger.ErrorWithErrSkip(ctx, 2, "Store unreadable", res.Err, "path", path)
		return res
	}
	logger.DebugSkip(ctx, 2, "Store read",
		"path", path,
		"state", res.State.String(),
		"rows", len(res.Rows),
	)
	return res
}
