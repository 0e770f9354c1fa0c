package scorecard

import (
	"errors"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"FundRadar/internal/calculator"
	"FundRadar/internal/model"
	"FundRadar/internal/reference"
)

// DropReason explains why a fund produced no row.
type DropReason string

const (
	DropNoPrices          DropReason = "no_prices"
	DropMissingVolatility DropReason = "missing_volatility"
	DropNotFound          DropReason = "not_found"
	DropMissingSector     DropReason = "missing_sector"
	DropInvalidYield      DropReason = "invalid_yield"
	DropInvalidRatio      DropReason = "invalid_ratio"
)

var errNonFiniteVolatility = errors.New("volatility is not finite")

type Dropped struct {
	Ticker string
	Reason DropReason
	Err    error
}

// Report describes what the cleaning pass removed or defaulted.
type Report struct {
	Dropped []Dropped
	// DiscountFallbacks lists tickers whose discount was undefined and set to 0.
	DiscountFallbacks []string
}

// DroppedBy counts dropped funds per reason.
func (r Report) DroppedBy() map[DropReason]int {
	out := map[DropReason]int{}
	for _, d := range r.Dropped {
		out[d.Reason]++
	}
	return out
}

// AttributeSource resolves reference attributes by exact ticker.
type AttributeSource interface {
	Lookup(ticker string) (model.ReferenceAttributes, error)
}

// Build assembles one row per distinct ticker in ids order. A row is emitted
// only when every column is present: funds without prices, with undefined
// volatility, missing from the reference table or with malformed attributes
// are dropped and listed in the report. A missing entry in prices is an empty series.
func Build(ids []string, ref AttributeSource, prices map[string]model.PriceSeries) ([]model.ScorecardRow, Report) {
	var (
		rows   = make([]model.ScorecardRow, 0, len(ids))
		report Report
		seen   = make(map[string]struct{}, len(ids))
	)
	drop := func(ticker string, reason DropReason, err error) {
		report.Dropped = append(report.Dropped, Dropped{Ticker: ticker, Reason: reason, Err: err})
		log.Debug().Str("ticker", ticker).Str("reason", string(reason)).AnErr("cause", err).Msg("fund dropped from scorecard")
	}

	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		series := prices[id]
		if series.Ticker == "" {
			series.Ticker = id
		}

		discount, err := calculator.Discount(series)
		if err != nil && !series.Empty() {
			report.DiscountFallbacks = append(report.DiscountFallbacks, id)
			log.Debug().Str("ticker", id).Err(err).Msg("discount undefined, using 0")
		}

		vol, ok := calculator.Volatility(calculator.Returns(series))

		switch {
		case series.Empty():
			drop(id, DropNoPrices, calculator.ErrEmptySeries)
			continue
		case !ok:
			drop(id, DropMissingVolatility, nil)
			continue
		case math.IsNaN(vol) || math.IsInf(vol, 0):
			drop(id, DropMissingVolatility, errNonFiniteVolatility)
			continue
		}

		attrs, err := ref.Lookup(id)
		if err != nil {
			drop(id, DropNotFound, err)
			continue
		}
		if strings.TrimSpace(attrs.Sector) == "" {
			drop(id, DropMissingSector, nil)
			continue
		}
		dy, err := reference.ParseDividendYield(attrs.DividendYield)
		if err != nil {
			drop(id, DropInvalidYield, err)
			continue
		}
		pb, err := reference.ParseRatio(attrs.PriceToBook)
		if err != nil {
			drop(id, DropInvalidRatio, err)
			continue
		}

		rows = append(rows, model.ScorecardRow{
			Ticker:        id,
			Discount:      discount,
			Sector:        attrs.Sector,
			DividendYield: dy,
			PriceToBook:   pb,
			Volatility:    vol,
		})
	}
	return rows, report
}
