package collector

import (
	"fmt"
	"strings"
)

// Symbology maps canonical fund tickers (as the reference table lists them)
// to the symbols the price provider expects, and back.
type Symbology struct {
	Suffix    string
	overrides map[string]string // ticker -> provider symbol
	reverse   map[string]string // provider symbol -> ticker
}

// NewSymbology builds a mapping that appends suffix to every ticker unless an
// explicit override exists. Overrides that would map two tickers onto one
// provider symbol are rejected so the mapping stays invertible.
func NewSymbology(suffix string, overrides map[string]string) (Symbology, error) {
	s := Symbology{
		Suffix:    suffix,
		overrides: make(map[string]string, len(overrides)),
		reverse:   make(map[string]string, len(overrides)),
	}
	for ticker, sym := range overrides {
		ticker = strings.TrimSpace(ticker)
		sym = strings.TrimSpace(sym)
		if ticker == "" || sym == "" {
			return Symbology{}, fmt.Errorf("symbol override %q -> %q: empty side", ticker, sym)
		}
		if prev, ok := s.reverse[sym]; ok {
			return Symbology{}, fmt.Errorf("symbol %q mapped from both %q and %q", sym, prev, ticker)
		}
		s.overrides[ticker] = sym
		s.reverse[sym] = ticker
	}
	for ticker, sym := range s.overrides {
		// sym is also what the default rule would produce for base.
		if !strings.HasSuffix(sym, suffix) {
			continue
		}
		base := strings.TrimSuffix(sym, suffix)
		if _, overridden := s.overrides[base]; base != ticker && !overridden {
			return Symbology{}, fmt.Errorf("override %q -> %q shadows ticker %q", ticker, sym, base)
		}
	}
	return s, nil
}

// ProviderSymbol returns the provider-side symbol for a canonical ticker.
func (s Symbology) ProviderSymbol(ticker string) string {
	if sym, ok := s.overrides[ticker]; ok {
		return sym
	}
	return ticker + s.Suffix
}

// Canonical inverts ProviderSymbol.
func (s Symbology) Canonical(symbol string) string {
	if ticker, ok := s.reverse[symbol]; ok {
		return ticker
	}
	return strings.TrimSuffix(symbol, s.Suffix)
}
