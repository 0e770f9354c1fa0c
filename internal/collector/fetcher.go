package collector

import (
	"context"
	"errors"

	"FundRadar/internal/model"
)

var (
	ErrNoData        = errors.New("no price data returned")
	ErrUnknownSymbol = errors.New("unknown symbol")
	ErrRateLimited   = errors.New("rate limited")
)

// Provider fetches daily adjusted closes for one provider symbol over an
// inclusive date range. Unknown symbols must be reported as errors, never panics.
type Provider interface {
	FetchPrices(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error)
	Name() string
}
