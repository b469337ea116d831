// Package yahoo provides a client for the Yahoo Finance quoteSummary API.
// This package centralizes all live quote API interactions for the application.
package yahoo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Module names accepted by the quoteSummary endpoint.
const (
	ModulePrice         = "price"
	ModuleSummaryDetail = "summaryDetail"
)

// ErrSymbolNotFound is returned when the service has no quote for the symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// Value is a Yahoo numeric field, encoded as {"raw": 1.23, "fmt": "1.23"}.
// An empty object or null leaves Raw nil.
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// UnmarshalJSON accepts both the {raw, fmt} object and a bare number.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var raw float64
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid numeric value %s: %w", string(data), err)
		}
		v.Raw = &raw
		return nil
	}

	type plain Value
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*v = Value(p)
	return nil
}

// Price is the "price" module.
type Price struct {
	Symbol             string `json:"symbol"`
	ShortName          string `json:"shortName"`
	LongName           string `json:"longName"`
	Currency           string `json:"currency"`
	ExchangeName       string `json:"exchangeName"`
	RegularMarketPrice Value  `json:"regularMarketPrice"`
	MarketCap          Value  `json:"marketCap"`
}

// SummaryDetail is the "summaryDetail" module.
type SummaryDetail struct {
	TrailingPE    Value `json:"trailingPE"`
	ForwardPE     Value `json:"forwardPE"`
	DividendYield Value `json:"dividendYield"`
	Beta          Value `json:"beta"`
}

// QuoteSummaryResult holds the requested modules for one symbol.
// Modules that were not requested or not available are nil.
type QuoteSummaryResult struct {
	Price         *Price         `json:"price"`
	SummaryDetail *SummaryDetail `json:"summaryDetail"`
}

// ResponseError is the error object embedded in a quoteSummary envelope.
type ResponseError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// quoteSummaryResponse is the envelope returned by /v10/finance/quoteSummary.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummaryResult `json:"result"`
		Error  *ResponseError       `json:"error"`
	} `json:"quoteSummary"`
}

// APIError represents a non-2xx response from the Yahoo Finance API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unwrap lets errors.Is(err, ErrSymbolNotFound) match 404 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrSymbolNotFound
	}
	return nil
}

// RateLimitError is returned when the local limiter cannot grant a request slot
// before the context expires.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit wait aborted (retry after %s)", e.RetryAfter)
}
