package collector

import (
	"context"
	"sync"
	"time"

	"FundRadar/internal/model"
)

// MockProvider returns canned series per provider symbol for development and testing.
// Symbols present in Errors fail with that error; symbols in neither map fail
// with ErrUnknownSymbol.
type MockProvider struct {
	Series map[string][]model.PricePoint
	Errors map[string]error
	Delay  time.Duration

	mu          sync.Mutex
	calls       map[string]int
	inFlight    int
	maxInFlight int
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) FetchPrices(ctx context.Context, symbol string, _ model.DateRange) ([]model.PricePoint, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[symbol]++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	pts, ok := m.Series[symbol]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return append([]model.PricePoint(nil), pts...), nil
}

// Calls reports how many times symbol was requested.
func (m *MockProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// MaxInFlight reports the highest number of concurrent requests observed.
func (m *MockProvider) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}

// MockSeries builds daily points starting at start from the given closes.
func MockSeries(start time.Time, closes ...float64) []model.PricePoint {
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Date: start.AddDate(0, 0, i), AdjClose: c}
	}
	return pts
}
