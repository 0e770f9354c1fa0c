package scorecard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundRadar/internal/model"
	"FundRadar/internal/reference"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func prices(ticker string, closes ...float64) model.PriceSeries {
	s := model.PriceSeries{Ticker: ticker}
	for i, c := range closes {
		s.Points = append(s.Points, model.PricePoint{Date: day0.AddDate(0, 0, i), AdjClose: c})
	}
	return s
}

func refTable(rows ...model.ReferenceAttributes) *reference.Table {
	return reference.NewTable(rows)
}

func attrs(ticker string) model.ReferenceAttributes {
	return model.ReferenceAttributes{Ticker: ticker, Sector: "Logística", DividendYield: "12,5%", PriceToBook: "0,95"}
}

func TestBuild_ScenarioD_FetchFailureExcluded(t *testing.T) {
	ref := refTable(attrs("A"), attrs("B"), attrs("C"))
	px := map[string]model.PriceSeries{
		"A": prices("A", 100, 110, 90, 120),
		"B": {Ticker: "B"},
		"C": prices("C", 50, 51, 49, 52, 50),
	}

	rows, report := Build(ref.Tickers(), ref, px)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Ticker)
	assert.Equal(t, "C", rows[1].Ticker)

	require.Len(t, report.Dropped, 1)
	assert.Equal(t, "B", report.Dropped[0].Ticker)
	assert.Equal(t, DropNoPrices, report.Dropped[0].Reason)
}

func TestBuild_ScenarioA_RowValues(t *testing.T) {
	ref := refTable(attrs("A"))
	rows, _ := Build([]string{"A"}, ref, map[string]model.PriceSeries{"A": prices("A", 100, 110, 90, 120)})
	require.Len(t, rows, 1)

	r := rows[0]
	assert.InDelta(t, -0.0666667, r.Discount, 1e-6)
	assert.Equal(t, "Logística", r.Sector)
	assert.Equal(t, 12.5, r.DividendYield)
	assert.Equal(t, 0.95, r.PriceToBook)
	assert.Greater(t, r.Volatility, 0.0)
}

func TestBuild_ScenarioC_SingleObservationDropped(t *testing.T) {
	ref := refTable(attrs("A"))
	rows, report := Build([]string{"A"}, ref, map[string]model.PriceSeries{"A": prices("A", 100)})
	assert.Empty(t, rows)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, DropMissingVolatility, report.Dropped[0].Reason)
}

func TestBuild_TwoObservationsHaveTooFewReturns(t *testing.T) {
	ref := refTable(attrs("A"))
	rows, report := Build([]string{"A"}, ref, map[string]model.PriceSeries{"A": prices("A", 100, 101)})
	assert.Empty(t, rows)
	assert.Equal(t, 1, report.DroppedBy()[DropMissingVolatility])
}

func TestBuild_MissingPricesEntryIsEmptySeries(t *testing.T) {
	ref := refTable(attrs("A"))
	rows, report := Build([]string{"A"}, ref, nil)
	assert.Empty(t, rows)
	assert.Equal(t, DropNoPrices, report.Dropped[0].Reason)
}

func TestBuild_AttributeFailuresDropRow(t *testing.T) {
	badYield := attrs("Y")
	badYield.DividendYield = "N/A"
	badRatio := attrs("R")
	badRatio.PriceToBook = "-"
	noSector := attrs("S")
	noSector.Sector = " "
	ref := refTable(attrs("OK"), badYield, badRatio, noSector)

	px := map[string]model.PriceSeries{}
	ids := []string{"OK", "Y", "R", "S", "GHOST"}
	for _, id := range ids {
		px[id] = prices(id, 10, 11, 10.5, 10.8)
	}

	rows, report := Build(ids, ref, px)
	require.Len(t, rows, 1)
	assert.Equal(t, "OK", rows[0].Ticker)

	by := report.DroppedBy()
	assert.Equal(t, 1, by[DropInvalidYield])
	assert.Equal(t, 1, by[DropInvalidRatio])
	assert.Equal(t, 1, by[DropMissingSector])
	assert.Equal(t, 1, by[DropNotFound])
	for _, d := range report.Dropped {
		if d.Reason == DropNotFound {
			assert.ErrorIs(t, d.Err, reference.ErrNotFound)
		}
	}
}

func TestBuild_ZeroPricesFallBackAndDrop(t *testing.T) {
	ref := refTable(attrs("Z"))
	rows, report := Build([]string{"Z"}, ref, map[string]model.PriceSeries{"Z": prices("Z", 0, 0, 0)})
	assert.Empty(t, rows)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, DropMissingVolatility, report.Dropped[0].Reason)
	assert.Equal(t, []string{"Z"}, report.DiscountFallbacks)
}

func TestBuild_UniqueTickersInInputOrder(t *testing.T) {
	ref := refTable(attrs("A"), attrs("B"), attrs("C"))
	px := map[string]model.PriceSeries{
		"A": prices("A", 1, 2, 3),
		"B": prices("B", 3, 2, 4),
		"C": prices("C", 5, 6, 5),
	}
	rows, _ := Build([]string{"C", "A", "C", "B", "A"}, ref, px)
	require.Len(t, rows, 3)

	var got []string
	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.Ticker], "duplicate row for %s", r.Ticker)
		seen[r.Ticker] = true
		got = append(got, r.Ticker)
	}
	assert.Equal(t, []string{"C", "A", "B"}, got)
}

func TestBuild_NoRowHasMissingFields(t *testing.T) {
	ref := refTable(attrs("A"), attrs("B"))
	rows, _ := Build([]string{"A", "B"}, ref, map[string]model.PriceSeries{
		"A": prices("A", 10, 12, 11, 13),
		"B": prices("B", 7, 7.1, 6.9),
	})
	for _, r := range rows {
		assert.NotEmpty(t, r.Ticker)
		assert.NotEmpty(t, r.Sector)
		assert.False(t, r.Volatility != r.Volatility, "NaN volatility")
		assert.False(t, r.Discount != r.Discount, "NaN discount")
	}
}
