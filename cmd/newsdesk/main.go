package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/pipeline"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/server"
	"stock-news-analysis/internal/trace"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(ctx)
		logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var configPath string
	var a *app

	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Scrape Indian market announcements, score sentiment and derive trade signals",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = loadApp(cmd.Context(), configPath)
			return err
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config.yaml")

	for _, src := range []struct{ name, short string }{
		{"screener", "Scrape the latest Screener.in announcements into screener_announcements"},
		{"bse", "Fetch BSE financial result announcements into process_sentiment_analysis"},
		{"nse", "Fetch NSE corporate announcements into process_sentiment_analysis"},
	} {
		name := src.name
		root.AddCommand(&cobra.Command{
			Use:   name,
			Short: src.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				job, err := a.announcementJob(cmd.Context(), name)
				if err != nil {
					return err
				}
				return runJobs(cmd.Context(), job)
			},
		})
	}

	root.AddCommand(&cobra.Command{
		Use:   "chart",
		Short: "Detect chart patterns for positive announcements in the latest sentiment store",
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.chartJob(cmd.Context())
			if err != nil {
				return err
			}
			return runJobs(cmd.Context(), job)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "signals",
		Short: "Compute smart signals from today's chart patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd.Context(), a.signalJob())
		},
	})

	root.AddCommand(newWatchCmd(&a))
	root.AddCommand(newServeCmd(&a))
	root.AddCommand(newCompressCmd(&a))
	return root
}

func newWatchCmd(a **app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run every job in a loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			jobs, err := (*a).allJobs(ctx)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = (*a).cfg.WatchInterval()
			}
			logger.Info(ctx, "Watching announcements", "interval", interval.String(), "jobs", len(jobs))
			pipeline.Watch(ctx, interval, jobs...)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "override watch.interval_minutes")
	return cmd
}

func newServeCmd(a **app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the day stores as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = (*a).cfg.Server.Addr
			}
			srv := server.New((*a).stores.Layout)
			return server.Run(cmd.Context(), addr, srv.Routes())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "override server.addr")
	return cmd
}

func newCompressCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "compress",
		Short: "Gzip day stores older than store.retention_days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := (*a).cfg
			done, err := resultstore.CompressOlder(cfg.OutputDir, cfg.Store.RetentionDays, time.Now())
			if err != nil {
				logger.ErrorWithErr(cmd.Context(), "Failed to compress old stores", err)
				return err
			}
			logger.Info(cmd.Context(), "Compressed old stores", "count", len(done), "files", done)
			return nil
		},
	}
}

// runJobs runs jobs once and fails the command if any of them failed.
func runJobs(ctx context.Context, jobs ...interfaces.Job) error {
	if failed := pipeline.RunOnce(ctx, jobs...); failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}
