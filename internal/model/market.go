package model

import (
	"errors"
	"time"
)

// PricePoint is one daily adjusted close.
type PricePoint struct {
	Date     time.Time
	AdjClose float64
}

// PriceSeries holds the adjusted-close history of one fund, ascending by date.
// An empty series is a valid state meaning the fetch failed.
type PriceSeries struct {
	Ticker string
	Points []PricePoint
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Points) }

// Empty reports whether the series has no observations.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// Prices returns the adjusted closes in date order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.AdjClose
	}
	return out
}

// Last returns the most recent observation.
func (s PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// ReturnPoint is the fractional change from the previous close.
type ReturnPoint struct {
	Date   time.Time
	Return float64
}

// ReturnSeries is derived from a PriceSeries and never mutated.
type ReturnSeries struct {
	Ticker string
	Points []ReturnPoint
}

func (r ReturnSeries) Len() int { return len(r.Points) }

func (r ReturnSeries) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Return
	}
	return out
}

// DateRange is the inclusive [Start, End] window of daily prices for a run.
type DateRange struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// NewDateRange builds a range truncated to calendar days in UTC.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: day(start), End: day(end)}
}

// ParseDateRange parses YYYY-MM-DD bounds. An empty end means today.
func ParseDateRange(start, end string, now time.Time) (DateRange, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return DateRange{}, err
	}
	e := now
	if end != "" {
		if e, err = time.Parse(dateLayout, end); err != nil {
			return DateRange{}, err
		}
	}
	r := NewDateRange(s, e)
	return r, r.Validate()
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("date range bounds must be set")
	}
	if r.End.Before(r.Start) {
		return errors.New("date range end is before start")
	}
	return nil
}

func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + ".." + r.End.Format(dateLayout)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
