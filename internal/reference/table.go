package reference

import (
	"errors"
	"fmt"
	"strings"

	"FundRadar/internal/model"
)

var ErrNotFound = errors.New("ticker not in reference table")

// Table indexes reference rows by ticker. The first row seen for a ticker wins.
type Table struct {
	order []string
	index map[string]model.ReferenceAttributes
}

// NewTable builds the index once; rows with an empty ticker are skipped.
func NewTable(rows []model.ReferenceAttributes) *Table {
	t := &Table{index: make(map[string]model.ReferenceAttributes, len(rows))}
	for _, r := range rows {
		r.Ticker = strings.TrimSpace(r.Ticker)
		if r.Ticker == "" {
			continue
		}
		if _, dup := t.index[r.Ticker]; dup {
			continue
		}
		t.index[r.Ticker] = r
		t.order = append(t.order, r.Ticker)
	}
	return t
}

// Tickers returns every ticker in first-seen order.
func (t *Table) Tickers() []string {
	return append([]string(nil), t.order...)
}

func (t *Table) Len() int { return len(t.order) }

// Lookup performs an exact-key lookup.
func (t *Table) Lookup(ticker string) (model.ReferenceAttributes, error) {
	attrs, ok := t.index[ticker]
	if !ok {
		return model.ReferenceAttributes{}, fmt.Errorf("%s: %w", ticker, ErrNotFound)
	}
	return attrs, nil
}
