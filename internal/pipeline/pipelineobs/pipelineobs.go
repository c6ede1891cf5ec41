package pipelineobs

import (
	"context"
	"time"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/trace"
	"stock-news-analysis/internal/types"
)

type observableJob struct {
	job interfaces.Job
}

var _ interfaces.Job = (*observableJob)(nil)

func Wrap(job interfaces.Job) interfaces.Job {
	return &observableJob{
		job: job,
	}
}

func (oj *observableJob) Name() string {
	return oj.job.Name()
}

func (oj *observableJob) Run(ctx context.Context) (types.Report, error) {
	ctx, span := trace.StartSpan(ctx, "job.Run")
	defer span.End()

	start := time.Now()

	logger.InfoSkip(ctx, 1, "Starting job",
		"job", oj.job.Name(),
	)

	report, err := oj.job.Run(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Job failed", err,
			"job", oj.job.Name(),
			"run_id", report.RunID,
			"store", report.Store,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return report, err
	}

	logger.InfoSkip(ctx, 1, "Job completed",
		"job", oj.job.Name(),
		"run_id", report.RunID,
		"store", report.Store,
		"fetched", report.Fetched,
		"appended", report.Appended,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
