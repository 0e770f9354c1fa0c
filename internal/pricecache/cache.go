package pricecache

import (
	"FundRadar/internal/collector"
)

// Cache persists provider responses between runs. Implementations are
// safe for concurrent use by the collector's workers.
type Cache interface {
	collector.PriceCache
	Close() error
}

var (
	_ Cache = (*SQLiteCache)(nil)
	_ Cache = (*NoopCache)(nil)
)
