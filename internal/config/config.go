package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"FundRadar/internal/collector"
	"FundRadar/internal/model"
	"FundRadar/internal/ranking"
	"FundRadar/internal/reference"
)

const (
	SourceHTML = "html"
	SourceYAML = "yaml"

	DefaultStart = "2019-01-01"
	DefaultCron  = "0 0 19 * * 1-5"
	DefaultTTL   = 12 * time.Hour
)

// Config holds all application configuration.
type Config struct {
	Reference struct {
		Source    string `yaml:"source"`
		URL       string `yaml:"url"`
		File      string `yaml:"file"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"reference"`
	Prices struct {
		BaseURL      string            `yaml:"base_url"`
		SymbolSuffix string            `yaml:"symbol_suffix"`
		Overrides    map[string]string `yaml:"overrides"`
		Timeout      time.Duration     `yaml:"timeout"`
		Concurrency  int               `yaml:"concurrency"`
		RateLimit    int               `yaml:"rate_limit"`
	} `yaml:"prices"`
	Range struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"range"`
	Cache struct {
		SQLitePath string        `yaml:"sqlite_path"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"cache"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Ranking ranking.Weights `yaml:"ranking"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("RADAR_REFERENCE_URL"); v != "" {
		cfg.Reference.URL = v
	}
	if v := os.Getenv("RADAR_REFERENCE_FILE"); v != "" {
		cfg.Reference.File = v
		cfg.Reference.Source = SourceYAML
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("RADAR_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("RADAR_CONCURRENCY: %w", err)
		}
		cfg.Prices.Concurrency = n
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("RADAR_CRON"); v != "" {
		cfg.Schedule.Cron = v
	}
	if v := os.Getenv("RADAR_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Reference.Source == "" {
		c.Reference.Source = SourceHTML
	}
	if c.Reference.URL == "" {
		c.Reference.URL = reference.DefaultRankingURL
	}
	if c.Prices.BaseURL == "" {
		c.Prices.BaseURL = collector.DefaultYahooBaseURL
	}
	if c.Prices.SymbolSuffix == "" {
		c.Prices.SymbolSuffix = ".SA"
	}
	if c.Prices.Timeout <= 0 {
		c.Prices.Timeout = collector.DefaultTimeout
	}
	switch {
	case c.Prices.Concurrency <= 0:
		c.Prices.Concurrency = collector.DefaultConcurrency
	case c.Prices.Concurrency > collector.MaxConcurrency:
		c.Prices.Concurrency = collector.MaxConcurrency
	}
	if c.Prices.RateLimit == 0 {
		c.Prices.RateLimit = collector.DefaultRateLimit
	}
	if c.Range.Start == "" {
		c.Range.Start = DefaultStart
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = DefaultTTL
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Ranking == (ranking.Weights{}) {
		c.Ranking = ranking.DefaultWeights
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.Reference.Source {
	case SourceHTML:
		if c.Reference.URL == "" {
			return fmt.Errorf("reference.url is required for the html source")
		}
	case SourceYAML:
		if c.Reference.File == "" {
			return fmt.Errorf("reference.file is required for the yaml source")
		}
	default:
		return fmt.Errorf("reference.source must be %q or %q, got %q", SourceHTML, SourceYAML, c.Reference.Source)
	}
	if _, err := c.DateRange(time.Now()); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	if _, err := c.Symbology(); err != nil {
		return fmt.Errorf("prices.overrides: %w", err)
	}
	w := c.Ranking
	if w.Discount < 0 || w.Volatility < 0 || w.Yield < 0 {
		return fmt.Errorf("ranking weights must not be negative")
	}
	return nil
}

// DateRange resolves range.start and range.end against now.
func (c *Config) DateRange(now time.Time) (model.DateRange, error) {
	return model.ParseDateRange(c.Range.Start, c.Range.End, now)
}

func (c *Config) Symbology() (collector.Symbology, error) {
	return collector.NewSymbology(c.Prices.SymbolSuffix, c.Prices.Overrides)
}
