package common

import (
	"fmt"
)

// NotFoundError reports a ticker with no matching company metadata.
type NotFoundError struct {
	Ticker string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Company metadata not found for ticker: %s", e.Ticker)
}

// DataSourceError reports an unreadable or corrupt static dataset.
type DataSourceError struct {
	Source string
	Err    error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("data source %s unavailable: %v", e.Source, e.Err)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// GenerationEndpointError reports a failed, rejected or timed out call to the
// text generation endpoint. StatusCode is 0 when no HTTP response was received.
type GenerationEndpointError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *GenerationEndpointError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s generation request failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s generation request failed: %v", e.Provider, e.Err)
}

func (e *GenerationEndpointError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a successful generation response without usable text.
type MalformedResponseError struct {
	Provider string
	Detail   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s returned a malformed response: %s", e.Provider, e.Detail)
}
