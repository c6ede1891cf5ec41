package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"stock-news-analysis/internal/announcements"
	"stock-news-analysis/internal/api"
	"stock-news-analysis/internal/broker"
	"stock-news-analysis/internal/config"
	"stock-news-analysis/internal/datasource"
	"stock-news-analysis/internal/interfaces"
	"stock-news-analysis/internal/llm/llmobs"
	"stock-news-analysis/internal/llm/noop"
	"stock-news-analysis/internal/llm/openai"
	"stock-news-analysis/internal/logger"
	"stock-news-analysis/internal/pipeline"
	"stock-news-analysis/internal/pipeline/pipelineobs"
	"stock-news-analysis/internal/resultstore"
	"stock-news-analysis/internal/sentiment"
	"stock-news-analysis/internal/trace"
)

// initializeSystem loads .env and starts the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// app carries what every subcommand needs, loaded once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	secrets *config.Secrets
	stores  pipeline.Stores
}

func loadApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info(ctx, "No config file, using defaults", "path", configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", configPath)
		return nil, err
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		secrets: secrets,
		stores:  pipeline.NewStores(cfg.OutputDir, resultstore.CorruptPolicy(cfg.Store.OnCorrupt)),
	}, nil
}

func (a *app) httpOptions() []api.ClientOption {
	return []api.ClientOption{
		api.WithTimeout(a.cfg.HTTPTimeout()),
		api.WithRateLimit(a.cfg.HTTP.RequestsPerSecond, 1),
		api.WithHeader("User-Agent", a.cfg.HTTP.UserAgent),
		api.WithLogging(true),
	}
}

func (a *app) extractor() (interfaces.TextExtractor, error) {
	cache, err := datasource.NewCache(a.cfg.Cache.Dir, a.cfg.CacheTTL())
	if err != nil {
		return nil, err
	}
	return announcements.NewExtractor(cache, a.httpOptions()...), nil
}

// analyzer picks the OpenAI scorer when enabled and keyed, otherwise the noop scorer.
func (a *app) analyzer(ctx context.Context) interfaces.SentimentAnalyzer {
	var scorer interfaces.ModelScorer = noop.NewScorer()

	if a.cfg.Sentiment.ModelEnabled {
		s, err := openai.NewScorer(a.secrets.OpenAIAPIKey, openai.Options{
			Model:       a.cfg.Sentiment.Model,
			MaxTokens:   a.cfg.Sentiment.MaxTokens,
			Temperature: a.cfg.Sentiment.Temperature,
		})
		if err != nil {
			logger.Warn(ctx, "Model sentiment disabled", "error", err)
		} else {
			logger.Info(ctx, "Using OpenAI model sentiment", "model", a.cfg.Sentiment.Model)
			scorer = s
		}
	}

	return sentiment.NewAnalyzer(llmobs.Wrap(scorer), a.cfg.Sentiment.MaxChars)
}

func (a *app) announcementJob(ctx context.Context, source string) (interfaces.Job, error) {
	ext, err := a.extractor()
	if err != nil {
		return nil, err
	}
	an := a.analyzer(ctx)

	switch source {
	case "screener":
		src := announcements.NewScreenerScraper(a.cfg.Screener.URL, a.cfg.Screener.Limit, a.cfg.HTTP.UserAgent, a.cfg.HTTPTimeout())
		return pipelineobs.Wrap(pipeline.NewScreenerJob(src, ext, an, a.stores)), nil
	case "bse":
		src := announcements.NewBSEClient(a.cfg.BSE.BaseURL, a.cfg.BSE.Category, a.cfg.BSE.Subcategory, a.cfg.BSE.DayOffset, a.httpOptions()...)
		return pipelineobs.Wrap(pipeline.NewSentimentJob(src, ext, an, a.stores)), nil
	case "nse":
		src := announcements.NewNSEClient(a.cfg.NSE.BaseURL, a.httpOptions()...)
		return pipelineobs.Wrap(pipeline.NewSentimentJob(src, ext, an, a.stores)), nil
	default:
		return nil, fmt.Errorf("unknown announcement source %q", source)
	}
}

func (a *app) chartJob(ctx context.Context) (interfaces.Job, error) {
	candles, err := broker.NewCandleSource(a.cfg, a.secrets)
	if err != nil {
		return nil, err
	}
	if a.cfg.Patterns.CandleSource == "LIVE" {
		logger.Info(ctx, "Using LIVE candle data from Zerodha", "exchange", a.cfg.Patterns.Exchange)
	} else {
		logger.Info(ctx, "Using STATIC mock candle data")
	}
	return pipelineobs.Wrap(pipeline.NewChartJob(a.stores, candles, a.cfg.Patterns.LookbackDays)), nil
}

func (a *app) signalJob() interfaces.Job {
	return pipelineobs.Wrap(pipeline.NewSignalJob(a.stores))
}

// allJobs is the watch cycle: every scraper, then chart patterns, then signals.
func (a *app) allJobs(ctx context.Context) ([]interfaces.Job, error) {
	var jobs []interfaces.Job
	for _, src := range []string{"screener", "bse", "nse"} {
		job, err := a.announcementJob(ctx, src)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	chart, err := a.chartJob(ctx)
	if err != nil {
		return nil, err
	}
	return append(jobs, chart, a.signalJob()), nil
}
