package reference

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidYield = errors.New("invalid dividend yield")
	ErrInvalidRatio = errors.New("invalid price/book ratio")
)

// ParseDividendYield turns a locale-formatted percentage such as "12,5%" into
// 12.5 (percent units): the percent sign is stripped and the decimal comma
// becomes a point.
func ParseDividendYield(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, "%", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := parseFinite(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYield, raw)
	}
	return v, nil
}

// ParseRatio parses a price/book ratio written either as "0,95" / "1.020,5"
// (pt-BR) or "0.95". Only a value containing a comma is read as pt-BR, so a
// dot-only value is always a decimal point: "1.020" is 1.02, never 1020.
// Ratios sit near 1, and the ranking page writes them with a comma.
// Placeholders such as "N/A" or "-" are rejected.
func ParseRatio(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := parseFinite(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRatio, raw)
	}
	return v, nil
}

func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}
