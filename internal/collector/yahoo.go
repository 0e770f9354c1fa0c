package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"FundRadar/internal/model"
)

const (
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	DefaultRateLimit    = 5
	// DefaultCooldown is how long the breaker stays open after upstream throttling.
	DefaultCooldown     = 2 * time.Second
)

// throttleTrip is the number of consecutive 429 answers that opens the breaker.
const throttleTrip = 5

// YahooProvider implements Provider using the Yahoo Finance chart API.
type YahooProvider struct {
	BaseURL  string
	Client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	cooldown time.Duration
}

// YahooOption configures a YahooProvider.
type YahooOption func(*YahooProvider)

func WithBaseURL(baseURL string) YahooOption {
	return func(p *YahooProvider) { p.BaseURL = baseURL }
}

func WithHTTPClient(c *http.Client) YahooOption {
	return func(p *YahooProvider) { p.Client = c }
}

// WithRateLimit paces outgoing chart requests; zero or less disables pacing.
func WithRateLimit(requestsPerSecond int) YahooOption {
	return func(p *YahooProvider) {
		if requestsPerSecond <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithCooldown sets how long the breaker stays open once upstream throttles.
func WithCooldown(d time.Duration) YahooOption {
	return func(p *YahooProvider) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// NewYahooProvider creates a provider with optional proxy support.
func NewYahooProvider(proxyURL string, opts ...YahooOption) *YahooProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	p := &YahooProvider{
		BaseURL: DefaultYahooBaseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		cooldown: DefaultCooldown,
	}
	for _, opt := range opts {
		opt(p)
	}
	// The breaker only tracks upstream throttling. Per-symbol answers,
	// server errors and per-fund timeouts belong to the fund that hit them.
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "yahoo-chart",
		MaxRequests: MaxConcurrency,
		Timeout:     p.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= throttleTrip
		},
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, ErrRateLimited)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return p
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the subset of the chart API response we read.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchPrices returns daily adjusted closes for [rng.Start, rng.End].
// While the breaker is open the call waits for it to close again; only ctx
// ends the wait, so every symbol still gets its own upstream attempt.
func (p *YahooProvider) FetchPrices(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("yahoo %s: wait for rate limiter: %w", symbol, err)
		}
		out, err := p.breaker.Execute(func() (interface{}, error) {
			return p.fetchChart(ctx, symbol, rng)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			if err := p.backoff(ctx); err != nil {
				return nil, fmt.Errorf("yahoo %s: waiting for throttling to clear: %w", symbol, err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return out.([]model.PricePoint), nil
	}
}

func (p *YahooProvider) backoff(ctx context.Context) error {
	wait := p.cooldown / 4
	if wait <= 0 {
		wait = time.Millisecond
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol string, rng model.DateRange) ([]model.PricePoint, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", strconv.FormatInt(rng.Start.Unix(), 10))
	// period2 is exclusive upstream; the range end is inclusive here.
	q.Set("period2", strconv.FormatInt(rng.End.AddDate(0, 0, 1).Unix(), 10))
	q.Set("includeAdjustedClose", "true")
	q.Set("events", "div,splits")
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body %s: %w", symbol, err)
	}

	var chart yahooChart
	decodeErr := json.Unmarshal(body, &chart)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrRateLimited)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrUnknownSymbol)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo %s: status %d, body: %s", symbol, resp.StatusCode, truncate(body, 200))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("yahoo decode %s: %w", symbol, decodeErr)
	}
	if e := chart.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			return nil, fmt.Errorf("yahoo %s: %w: %s", symbol, ErrUnknownSymbol, e.Description)
		}
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, e.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	points := make([]model.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bars (holidays, suspended sessions)
		}
		t := time.Unix(ts, 0).UTC()
		points = append(points, model.PricePoint{
			Date:     time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			AdjClose: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
