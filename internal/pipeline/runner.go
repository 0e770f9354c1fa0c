package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"FundRadar/internal/collector"
	"FundRadar/internal/metrics"
	"FundRadar/internal/model"
	"FundRadar/internal/reference"
	"FundRadar/internal/scorecard"
)

// PriceFetcher fetches price series for a set of tickers.
type PriceFetcher interface {
	Fetch(ctx context.Context, tickers []string, rng model.DateRange) (*collector.Result, error)
}

// Result is the outcome of one scorecard run.
type Result struct {
	GeneratedAt time.Time
	Range       model.DateRange
	Rows        []model.ScorecardRow
	Report      scorecard.Report
	Failures    []collector.Failure
}

// Runner wires the reference table, price collection and the builder into
// one run. Runs are independent and nothing is kept between them.
type Runner struct {
	Reference reference.Provider
	Prices    PriceFetcher
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run produces the scorecard for rng. A reference load failure or
// cancellation aborts the run; per-fund failures only shrink the output.
func (r *Runner) Run(ctx context.Context, rng model.DateRange) (res *Result, err error) {
	started := r.now()
	defer func() { r.Metrics.ObserveRun(r.now().Sub(started), err) }()

	if err := rng.Validate(); err != nil {
		return nil, err
	}

	table, err := r.Reference.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference table: %w", err)
	}
	tickers := table.Tickers()
	log.Info().Int("funds", len(tickers)).Msg("scorecard run started")

	fetched, err := r.Prices.Fetch(ctx, tickers, rng)
	if err != nil {
		return nil, err
	}

	rows, report := scorecard.Build(tickers, table, fetched.Series)

	failuresBy := map[string]int{}
	for _, f := range fetched.Failures {
		failuresBy[string(f.Reason)]++
	}
	droppedBy := map[string]int{}
	for reason, n := range report.DroppedBy() {
		droppedBy[string(reason)] = n
	}
	r.Metrics.ObserveFetches(len(tickers)-len(fetched.Failures), failuresBy)
	r.Metrics.ObserveDropped(droppedBy)
	r.Metrics.ObserveRows(len(rows), len(report.DiscountFallbacks))

	log.Info().
		Int("funds", len(tickers)).
		Int("rows", len(rows)).
		Int("fetch_failures", len(fetched.Failures)).
		Int("dropped", len(report.Dropped)).
		Int("discount_fallbacks", len(report.DiscountFallbacks)).
		Dur("elapsed", r.now().Sub(started)).
		Msg("scorecard built")

	return &Result{
		GeneratedAt: started.UTC(),
		Range:       rng,
		Rows:        rows,
		Report:      report,
		Failures:    fetched.Failures,
	}, nil
}
