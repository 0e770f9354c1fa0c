package collector

import (
	"context"

	"github.com/rs/zerolog/log"

	"FundRadar/internal/model"
)

// PriceCache stores provider responses keyed by symbol and range.
type PriceCache interface {
	Get(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, bool, error)
	Put(ctx context.Context, symbol string, rng model.DateRange, points []model.PricePoint) error
}

// CachedProvider decorates a Provider with a read-through PriceCache.
// Only successful, non-empty fetches are stored.
type CachedProvider struct {
	next  Provider
	cache PriceCache
}

func NewCachedProvider(next Provider, cache PriceCache) *CachedProvider {
	return &CachedProvider{next: next, cache: cache}
}

func (c *CachedProvider) Name() string { return c.next.Name() + "+cache" }

func (c *CachedProvider) FetchPrices(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	pts, ok, err := c.cache.Get(ctx, symbol, rng)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("price cache read failed, fetching upstream")
	} else if ok {
		return pts, nil
	}

	pts, err = c.next.FetchPrices(ctx, symbol, rng)
	if err != nil || len(pts) == 0 {
		return pts, err
	}
	if err := c.cache.Put(ctx, symbol, rng, pts); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("price cache write failed")
	}
	return pts, nil
}
