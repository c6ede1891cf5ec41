package pipeline

import (
	"context"
	"time"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
)

// Watch runs jobs one after another, immediately and then every interval,
// until ctx is cancelled. A failing job is logged and the cycle continues.
func Watch(ctx context.Context, interval time.Duration, jobs ...interfaces.Job) {
	RunOnce(ctx, jobs...)

	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			RunOnce(ctx, jobs...)
		case <-ctx.Done():
			logger.Info(ctx, "Watch loop stopped")
			return
		}
	}
}

// RunOnce runs each job in order and returns how many failed. Jobs are
// expected to be wrapped with pipelineobs, which logs their reports.
func RunOnce(ctx context.Context, jobs ...interfaces.Job) int {
	failed := 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			return failed
		}
		if _, err := job.Run(ctx); err != nil {
			failed++
		}
	}
	return failed
}
