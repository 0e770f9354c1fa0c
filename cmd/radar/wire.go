package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"FundRadar/internal/collector"
	"FundRadar/internal/config"
	"FundRadar/internal/metrics"
	"FundRadar/internal/pipeline"
	"FundRadar/internal/pricecache"
	"FundRadar/internal/reference"
)

// app holds everything a command needs for one or more runs.
type app struct {
	cfg     *config.Config
	runner  *pipeline.Runner
	metrics *metrics.Metrics
	cache   pricecache.Cache
}

func (a *app) Close() error { return a.cache.Close() }

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(cfg *config.Config) (*app, error) {
	symbols, err := cfg.Symbology()
	if err != nil {
		return nil, err
	}

	var cache pricecache.Cache = pricecache.NewNoopCache()
	if cfg.Cache.SQLitePath != "" {
		sc, err := pricecache.NewSQLiteCache(cfg.Cache.SQLitePath, cfg.Cache.TTL)
		if err != nil {
			log.Warn().Err(err).Msg("init price cache failed, running uncached")
		} else {
			cache = sc
		}
	}

	var provider collector.Provider = collector.NewYahooProvider(cfg.Proxy,
		collector.WithBaseURL(cfg.Prices.BaseURL),
		collector.WithRateLimit(cfg.Prices.RateLimit),
	)
	provider = collector.NewCachedProvider(provider, cache)
	log.Info().Str("provider", provider.Name()).Msg("price source ready")

	store := collector.NewStore(provider, symbols)
	store.Timeout = cfg.Prices.Timeout
	store.Concurrency = cfg.Prices.Concurrency

	m := metrics.New()
	return &app{
		cfg:     cfg,
		metrics: m,
		cache:   cache,
		runner: &pipeline.Runner{
			Reference: referenceProvider(cfg),
			Prices:    store,
			Metrics:   m,
		},
	}, nil
}

func referenceProvider(cfg *config.Config) reference.Provider {
	if cfg.Reference.Source == config.SourceYAML {
		return reference.YAMLProvider{File: cfg.Reference.File}
	}
	p := reference.NewHTMLProvider(cfg.Reference.URL, cfg.Proxy)
	if cfg.Reference.UserAgent != "" {
		p.UserAgent = cfg.Reference.UserAgent
	}
	return p
}
