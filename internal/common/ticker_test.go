package common

import (
	"testing"
)

func TestParseTicker(t *testing.T) {
	tests := []struct {
		input      string
		wantSymbol string
		wantMarket string
		wantString string
	}{
		// Symbol with market suffix
		{"AAL US", "AAL", "US", "AAL US"},
		{"BHP AU", "BHP", "AU", "BHP AU"},

		// Bare symbol
		{"MSFT", "MSFT", "", "MSFT"},

		// Case normalization
		{"aal us", "AAL", "US", "AAL US"},
		{"msft", "MSFT", "", "MSFT"},

		// Only the first space splits
		{"BRK B US", "BRK", "B US", "BRK B US"},

		// Whitespace handling
		{"  AAL US  ", "AAL", "US", "AAL US"},

		// Empty input
		{"", "", "", ""},
		{"   ", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseTicker(tt.input)
			if got.Symbol != tt.wantSymbol {
				t.Errorf("ParseTicker(%q).Symbol = %q, want %q", tt.input, got.Symbol, tt.wantSymbol)
			}
			if got.Market != tt.wantMarket {
				t.Errorf("ParseTicker(%q).Market = %q, want %q", tt.input, got.Market, tt.wantMarket)
			}
			if got.String() != tt.wantString {
				t.Errorf("ParseTicker(%q).String() = %q, want %q", tt.input, got.String(), tt.wantString)
			}
			if got.Raw != tt.input {
				t.Errorf("ParseTicker(%q).Raw = %q, want original input", tt.input, got.Raw)
			}
		})
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AAL US", "AAL"},
		{"aal", "AAL"},
		{"ZZZZ", "ZZZZ"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTicker(tt.input); got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTickerIsEmpty(t *testing.T) {
	if !ParseTicker("  ").IsEmpty() {
		t.Error("expected whitespace ticker to be empty")
	}
	if ParseTicker("AAL").IsEmpty() {
		t.Error("expected AAL to be non-empty")
	}
}
