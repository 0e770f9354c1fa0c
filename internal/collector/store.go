package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"FundRadar/internal/model"
)

const (
	DefaultConcurrency = 8
	MaxConcurrency     = 16
	DefaultTimeout     = 10 * time.Second
)

// Reason classifies why a fund's prices could not be fetched.
type Reason string

const (
	ReasonTimeout       Reason = "timeout"
	ReasonNoData        Reason = "no_data"
	ReasonUnknownSymbol Reason = "unknown_symbol"
	ReasonRateLimited   Reason = "rate_limited"
	ReasonProvider      Reason = "provider"
)

// Failure is the terminal outcome of one fund's fetch. There are no retries.
type Failure struct {
	Ticker string
	Symbol string
	Reason Reason
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s (%s): %s: %v", f.Ticker, f.Symbol, f.Reason, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Classify maps a provider error to a Reason.
func Classify(err error) Reason {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, ErrNoData):
		return ReasonNoData
	case errors.Is(err, ErrUnknownSymbol):
		return ReasonUnknownSymbol
	case errors.Is(err, ErrRateLimited):
		return ReasonRateLimited
	default:
		return ReasonProvider
	}
}

// Result holds one series per attempted ticker. Failed tickers map to an
// empty series and have an entry in Failures.
type Result struct {
	Series   map[string]model.PriceSeries
	Failures []Failure
}

// Failed returns the failure recorded for ticker, if any.
func (r *Result) Failed(ticker string) (Failure, bool) {
	for _, f := range r.Failures {
		if f.Ticker == ticker {
			return f, true
		}
	}
	return Failure{}, false
}

// Store fetches price series for many funds with a bounded worker pool,
// isolating each fund's failure.
type Store struct {
	Provider    Provider
	Symbols     Symbology
	Timeout     time.Duration
	Concurrency int
}

// NewStore creates a Store with default timeout and concurrency.
func NewStore(provider Provider, symbols Symbology) *Store {
	return &Store{
		Provider:    provider,
		Symbols:     symbols,
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

type slot struct {
	series  model.PriceSeries
	failure *Failure
}

// Fetch attempts every distinct ticker exactly once over rng. Per-fund
// failures never abort the run; only cancellation of ctx does, in which case
// partial results are discarded.
func (s *Store) Fetch(ctx context.Context, tickers []string, rng model.DateRange) (*Result, error) {
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	uniq := dedupe(tickers)
	slots := make([]slot, len(uniq))

	var g errgroup.Group
	g.SetLimit(s.concurrency())
	for i, ticker := range uniq {
		if ctx.Err() != nil {
			break
		}
		i, ticker := i, ticker
		g.Go(func() error {
			slots[i] = s.fetchOne(ctx, ticker, rng)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	res := &Result{Series: make(map[string]model.PriceSeries, len(uniq))}
	for i, ticker := range uniq {
		res.Series[ticker] = slots[i].series
		if f := slots[i].failure; f != nil {
			res.Failures = append(res.Failures, *f)
		}
	}
	log.Info().
		Int("funds", len(uniq)).
		Int("failed", len(res.Failures)).
		Str("range", rng.String()).
		Str("provider", s.Provider.Name()).
		Msg("price fetch complete")
	return res, nil
}

func (s *Store) fetchOne(ctx context.Context, ticker string, rng model.DateRange) slot {
	symbol := s.Symbols.ProviderSymbol(ticker)
	var (
		points []model.PricePoint
		err    error
	)
	// A symbol that maps back to another ticker would attribute that
	// fund's prices to this one.
	if back := s.Symbols.Canonical(symbol); back != ticker {
		err = fmt.Errorf("%w: %s resolves to %s, which belongs to %s", ErrUnknownSymbol, ticker, symbol, back)
	} else {
		fctx, cancel := context.WithTimeout(ctx, s.timeout())
		points, err = s.Provider.FetchPrices(fctx, symbol, rng)
		cancel()
		if err == nil && len(points) == 0 {
			err = ErrNoData
		}
	}
	if err != nil {
		f := &Failure{Ticker: ticker, Symbol: symbol, Reason: Classify(err), Err: err}
		if ctx.Err() == nil {
			log.Warn().Str("ticker", ticker).Str("symbol", symbol).Str("reason", string(f.Reason)).Err(err).Msg("price fetch failed")
		}
		return slot{series: model.PriceSeries{Ticker: ticker}, failure: f}
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return slot{series: model.PriceSeries{Ticker: ticker, Points: points}}
}

func (s *Store) concurrency() int {
	switch {
	case s.Concurrency <= 0:
		return DefaultConcurrency
	case s.Concurrency > MaxConcurrency:
		return MaxConcurrency
	default:
		return s.Concurrency
	}
}

func (s *Store) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func dedupe(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
