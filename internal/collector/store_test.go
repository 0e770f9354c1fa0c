package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundRadar/internal/model"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func suffixed(t *testing.T) Symbology {
	t.Helper()
	s, err := NewSymbology(".SA", nil)
	require.NoError(t, err)
	return s
}

func TestStore_IsolatesFailures(t *testing.T) {
	mock := &MockProvider{
		Series: map[string][]model.PricePoint{
			"A.SA": MockSeries(day0, 10, 11, 12),
			"C.SA": MockSeries(day0, 20, 19, 21),
		},
		Errors: map[string]error{"B.SA": errors.New("connection reset")},
	}
	store := NewStore(mock, suffixed(t))

	res, err := store.Fetch(context.Background(), []string{"A", "B", "C"}, testRange())
	require.NoError(t, err)

	require.Len(t, res.Series, 3)
	assert.Equal(t, 3, res.Series["A"].Len())
	assert.True(t, res.Series["B"].Empty())
	assert.Equal(t, "B", res.Series["B"].Ticker)
	assert.Equal(t, 3, res.Series["C"].Len())

	require.Len(t, res.Failures, 1)
	f, ok := res.Failed("B")
	require.True(t, ok)
	assert.Equal(t, ReasonProvider, f.Reason)
	assert.Equal(t, "B.SA", f.Symbol)
}

func TestStore_AttemptsEachTickerOnce(t *testing.T) {
	mock := &MockProvider{Series: map[string][]model.PricePoint{"A.SA": MockSeries(day0, 1, 2)}}
	store := NewStore(mock, suffixed(t))

	res, err := store.Fetch(context.Background(), []string{"A", "A", "B", "A"}, testRange())
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("A.SA"))
	assert.Equal(t, 1, mock.Calls("B.SA"), "failed fetches are not retried")
	assert.Len(t, res.Series, 2)
}

func TestStore_EmptyResultIsFailure(t *testing.T) {
	mock := &MockProvider{Series: map[string][]model.PricePoint{"A.SA": {}}}
	res, err := NewStore(mock, suffixed(t)).Fetch(context.Background(), []string{"A"}, testRange())
	require.NoError(t, err)
	f, ok := res.Failed("A")
	require.True(t, ok)
	assert.Equal(t, ReasonNoData, f.Reason)
}

func TestStore_SortsSeriesAscending(t *testing.T) {
	pts := MockSeries(day0, 1, 2, 3)
	pts[0], pts[2] = pts[2], pts[0]
	mock := &MockProvider{Series: map[string][]model.PricePoint{"A.SA": pts}}
	res, err := NewStore(mock, suffixed(t)).Fetch(context.Background(), []string{"A"}, testRange())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, res.Series["A"].Prices())
}

func TestStore_TimeoutIsFailure(t *testing.T) {
	mock := &MockProvider{
		Series: map[string][]model.PricePoint{"A.SA": MockSeries(day0, 1, 2)},
		Delay:  500 * time.Millisecond,
	}
	store := NewStore(mock, suffixed(t))
	store.Timeout = 20 * time.Millisecond

	res, err := store.Fetch(context.Background(), []string{"A"}, testRange())
	require.NoError(t, err)
	f, ok := res.Failed("A")
	require.True(t, ok)
	assert.Equal(t, ReasonTimeout, f.Reason)
	assert.True(t, res.Series["A"].Empty())
}

func TestStore_BoundsConcurrency(t *testing.T) {
	mock := &MockProvider{Series: map[string][]model.PricePoint{}, Delay: 5 * time.Millisecond}
	var tickers []string
	for i := 0; i < 40; i++ {
		tk := fmt.Sprintf("F%02d", i)
		tickers = append(tickers, tk)
		mock.Series[tk+".SA"] = MockSeries(day0, 1, 2)
	}
	store := NewStore(mock, suffixed(t))
	store.Concurrency = 4

	res, err := store.Fetch(context.Background(), tickers, testRange())
	require.NoError(t, err)
	assert.Empty(t, res.Failures)
	assert.LessOrEqual(t, mock.MaxInFlight(), 4)
}

func TestStore_ClampsConcurrency(t *testing.T) {
	s := &Store{Concurrency: 100}
	assert.Equal(t, MaxConcurrency, s.concurrency())
	s.Concurrency = 0
	assert.Equal(t, DefaultConcurrency, s.concurrency())
}

func TestStore_CancellationDiscardsResults(t *testing.T) {
	mock := &MockProvider{
		Series: map[string][]model.PricePoint{"A.SA": MockSeries(day0, 1, 2)},
		Delay:  time.Second,
	}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	res, err := NewStore(mock, suffixed(t)).Fetch(ctx, []string{"A", "B"}, testRange())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestStore_RejectsInvalidRange(t *testing.T) {
	rng := model.DateRange{Start: day0, End: day0.AddDate(0, 0, -1)}
	_, err := NewStore(&MockProvider{}, Symbology{}).Fetch(context.Background(), []string{"A"}, rng)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ReasonTimeout, Classify(fmt.Errorf("x: %w", context.DeadlineExceeded)))
	assert.Equal(t, ReasonNoData, Classify(ErrNoData))
	assert.Equal(t, ReasonUnknownSymbol, Classify(fmt.Errorf("yahoo: %w", ErrUnknownSymbol)))
	assert.Equal(t, ReasonRateLimited, Classify(ErrRateLimited))
	assert.Equal(t, ReasonProvider, Classify(errors.New("boom")))
}

func TestStore_RejectsTickerWhoseSymbolMapsElsewhere(t *testing.T) {
	// Built by hand: NewSymbology refuses this mapping, so B.SA would
	// otherwise be fetched for both A and B.
	symbols := Symbology{
		Suffix:    ".SA",
		overrides: map[string]string{"A": "B.SA"},
		reverse:   map[string]string{"B.SA": "A"},
	}
	mock := &MockProvider{Series: map[string][]model.PricePoint{"B.SA": MockSeries(day0, 1, 2, 3)}}
	store := NewStore(mock, symbols)

	res, err := store.Fetch(context.Background(), []string{"A", "B"}, testRange())
	require.NoError(t, err)

	assert.Equal(t, 3, res.Series["A"].Len())
	f, failed := res.Failed("B")
	require.True(t, failed)
	assert.Equal(t, ReasonUnknownSymbol, f.Reason)
	assert.ErrorIs(t, f, ErrUnknownSymbol)
	assert.Equal(t, 1, mock.Calls("B.SA"), "only the owning ticker reaches the provider")
}
