package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Corrupt-store policies for store.on_corrupt.
const (
	OnCorruptAbort      = "abort"
	OnCorruptTreatEmpty = "treat_empty"
)

type Config struct {
	OutputDir string `yaml:"output_dir"`
	Store     struct {
		OnCorrupt     string `yaml:"on_corrupt"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"store"`
	HTTP struct {
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		UserAgent         string  `yaml:"user_agent"`
	} `yaml:"http"`
	Cache struct {
		Dir      string `yaml:"dir"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"cache"`
	Screener struct {
		URL   string `yaml:"url"`
		Limit int    `yaml:"limit"`
	} `yaml:"screener"`
	BSE struct {
		BaseURL     string `yaml:"base_url"`
		Category    string `yaml:"category"`
		Subcategory string `yaml:"subcategory"`
		DayOffset   int    `yaml:"day_offset"`
	} `yaml:"bse"`
	NSE struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"nse"`
	Sentiment struct {
		ModelEnabled bool    `yaml:"model_enabled"`
		Model        string  `yaml:"model"`
		MaxTokens    int     `yaml:"max_tokens"`
		Temperature  float32 `yaml:"temperature"`
		MaxChars     int     `yaml:"max_chars"`
	} `yaml:"sentiment"`
	Patterns struct {
		CandleSource string `yaml:"candle_source"`
		Exchange     string `yaml:"exchange"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"patterns"`
	Watch struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"watch"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Default returns a Config with every default applied, for runs without config.yaml.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
	if c.Store.OnCorrupt == "" {
		c.Store.OnCorrupt = OnCorruptAbort
	}
	if c.Store.RetentionDays == 0 {
		c.Store.RetentionDays = 7
	}
	if c.HTTP.TimeoutSeconds == 0 {
		c.HTTP.TimeoutSeconds = 30
	}
	if c.HTTP.RequestsPerSecond == 0 {
		c.HTTP.RequestsPerSecond = 2
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "cache/attachments"
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = 24
	}
	if c.Screener.URL == "" {
		c.Screener.URL = "https://www.screener.in/announcements/all/"
	}
	if c.Screener.Limit == 0 {
		c.Screener.Limit = 5
	}
	if c.BSE.BaseURL == "" {
		c.BSE.BaseURL = "https://api.bseindia.com"
	}
	if c.BSE.Category == "" {
		c.BSE.Category = "Result"
	}
	if c.BSE.Subcategory == "" {
		c.BSE.Subcategory = "Financial Results"
	}
	if c.NSE.BaseURL == "" {
		c.NSE.BaseURL = "https://www.nseindia.com"
	}
	if c.Sentiment.Model == "" {
		c.Sentiment.Model = "gpt-4o-mini"
	}
	if c.Sentiment.MaxTokens == 0 {
		c.Sentiment.MaxTokens = 64
	}
	if c.Sentiment.MaxChars == 0 {
		c.Sentiment.MaxChars = 2000
	}
	if c.Patterns.CandleSource == "" {
		c.Patterns.CandleSource = "STATIC"
	}
	if c.Patterns.Exchange == "" {
		c.Patterns.Exchange = "NSE"
	}
	if c.Patterns.LookbackDays == 0 {
		c.Patterns.LookbackDays = 90
	}
	if c.Watch.IntervalMinutes == 0 {
		c.Watch.IntervalMinutes = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output_dir cannot be empty")
	}
	if c.Store.OnCorrupt != OnCorruptAbort && c.Store.OnCorrupt != OnCorruptTreatEmpty {
		return fmt.Errorf("invalid store.on_corrupt '%s': must be '%s' or '%s'", c.Store.OnCorrupt, OnCorruptAbort, OnCorruptTreatEmpty)
	}
	if c.Store.RetentionDays < 1 {
		return fmt.Errorf("store.retention_days must be at least 1, got %d", c.Store.RetentionDays)
	}
	if c.HTTP.RequestsPerSecond < 0 {
		return fmt.Errorf("http.requests_per_second must be positive, got %.2f", c.HTTP.RequestsPerSecond)
	}
	if c.Screener.Limit < 1 {
		return fmt.Errorf("screener.limit must be at least 1, got %d", c.Screener.Limit)
	}
	if c.Patterns.CandleSource != "STATIC" && c.Patterns.CandleSource != "LIVE" {
		return fmt.Errorf("invalid patterns.candle_source '%s': must be 'STATIC' or 'LIVE'", c.Patterns.CandleSource)
	}
	if c.Patterns.LookbackDays < 20 {
		return fmt.Errorf("patterns.lookback_days must be at least 20, got %d", c.Patterns.LookbackDays)
	}
	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
