package pricecache

import (
	"context"

	"FundRadar/internal/model"
)

// NoopCache is used when no cache path is configured. Every Get misses.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(context.Context, string, model.DateRange) ([]model.PricePoint, bool, error) {
	return nil, false, nil
}

func (n *NoopCache) Put(context.Context, string, model.DateRange, []model.PricePoint) error {
	return nil
}

func (n *NoopCache) Close() error { return nil }
