package calculator

import (
	"errors"
	"fmt"

	"FundRadar/internal/model"
)

// ReferenceQuantile is the historical price quantile the discount is measured against.
const ReferenceQuantile = 0.75

var (
	ErrEmptySeries   = errors.New("empty series")
	ErrZeroReference = errors.New("reference price is zero")
)

// Discount measures how far the last price sits below the 75th percentile of
// the series: -(last - q75) / q75. Positive means the fund trades at a discount.
//
// When the metric is undefined it returns 0 together with the reason, so the
// caller decides whether to keep the fallback.
func Discount(series model.PriceSeries) (float64, error) {
	last, ok := series.Last()
	if !ok {
		return 0, ErrEmptySeries
	}
	q, err := Quantile(series.Prices(), ReferenceQuantile)
	if err != nil {
		return 0, err
	}
	if q == 0 {
		return 0, fmt.Errorf("%s: %w", series.Ticker, ErrZeroReference)
	}
	return -(last.AdjClose - q) / q, nil
}
