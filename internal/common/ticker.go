// Package common provides shared utilities across the application.
package common

import (
	"strings"
)

// Ticker is a submitted ticker split into its symbol and optional market suffix.
// Format: SYMBOL[ MARKET] (e.g., "AAL US", "BHP AU", "MSFT")
type Ticker struct {
	// Symbol is the upper-cased exchange symbol (e.g., "AAL")
	Symbol string
	// Market is the upper-cased suffix after the first space, if any (e.g., "US")
	Market string
	// Raw is the original ticker string
	Raw string
}

// ParseTicker splits a ticker on its first space.
//   - "AAL US" -> Symbol="AAL", Market="US"
//   - "aal"    -> Symbol="AAL", Market=""
//   - "  msft  " -> Symbol="MSFT" (surrounding whitespace ignored)
func ParseTicker(ticker string) Ticker {
	trimmed := strings.TrimSpace(ticker)
	if trimmed == "" {
		return Ticker{Raw: ticker}
	}

	symbol, market, _ := strings.Cut(trimmed, " ")
	return Ticker{
		Symbol: strings.ToUpper(symbol),
		Market: strings.ToUpper(strings.TrimSpace(market)),
		Raw:    ticker,
	}
}

// NormalizeTicker returns the upper-cased symbol portion before the first space.
// Both the fundamentals lookup and the quote service key on this value.
func NormalizeTicker(ticker string) string {
	return ParseTicker(ticker).Symbol
}

// String returns the canonical "SYMBOL MARKET" form.
func (t Ticker) String() string {
	if t.Market == "" {
		return t.Symbol
	}
	return t.Symbol + " " + t.Market
}

// IsEmpty reports whether no symbol could be parsed.
func (t Ticker) IsEmpty() bool {
	return t.Symbol == ""
}
