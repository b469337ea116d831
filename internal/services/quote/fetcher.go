package quote

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/yahoo"
)

// QuoteUnavailableError describes why no live quote could be produced.
// It is logged and absorbed by Fetch, never returned to callers.
type QuoteUnavailableError struct {
	Symbol   string
	NotFound bool
	Err      error
}

func (e *QuoteUnavailableError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("no live quote for %s: symbol not found", e.Symbol)
	}
	return fmt.Sprintf("live quote for %s unavailable: %v", e.Symbol, e.Err)
}

func (e *QuoteUnavailableError) Unwrap() error {
	return e.Err
}

// SummaryClient is the subset of the Yahoo client used by the fetcher
type SummaryClient interface {
	QuoteSummary(ctx context.Context, symbol string, modules ...string) (*yahoo.QuoteSummaryResult, error)
}

// Fetcher retrieves live quotes, degrading every failure to a nil quote
type Fetcher struct {
	client SummaryClient
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.QuoteFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher over the given quote client
func NewFetcher(client SummaryClient, logger arbor.ILogger) *Fetcher {
	return &Fetcher{
		client: client,
		logger: logger,
	}
}

// NewYahooFetcher builds the Yahoo client from config and wraps it in a Fetcher
func NewYahooFetcher(config common.QuoteConfig, logger arbor.ILogger) *Fetcher {
	client := yahoo.NewClient(
		yahoo.WithBaseURL(config.BaseURL),
		yahoo.WithSessionURL(config.SessionURL),
		yahoo.WithUserAgent(config.UserAgent),
		yahoo.WithTimeout(config.GetTimeout()),
		yahoo.WithRateLimit(config.GetRateLimit()),
		yahoo.WithLogger(logger),
	)
	return NewFetcher(client, logger)
}

// Fetch returns the live quote for ticker, or nil when it cannot be obtained.
func (f *Fetcher) Fetch(ctx context.Context, ticker string) *models.LiveQuote {
	quote, err := f.fetch(ctx, ticker)
	if err != nil {
		f.logger.Warn().
			Str("ticker", ticker).
			Err(err).
			Msg("Live quote unavailable, continuing without market data")
		return nil
	}

	f.logger.Debug().
		Str("ticker", ticker).
		Str("symbol", quote.Symbol).
		Msg("Live quote fetched")

	return quote
}

func (f *Fetcher) fetch(ctx context.Context, ticker string) (quote *models.LiveQuote, err error) {
	symbol := common.NormalizeTicker(ticker)

	// A misbehaving client must not take the pipeline down with it
	defer func() {
		if r := recover(); r != nil {
			quote = nil
			err = &QuoteUnavailableError{Symbol: symbol, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	result, err := f.client.QuoteSummary(ctx, symbol, yahoo.ModulePrice, yahoo.ModuleSummaryDetail)
	if err != nil {
		return nil, &QuoteUnavailableError{
			Symbol:   symbol,
			NotFound: errors.Is(err, yahoo.ErrSymbolNotFound),
			Err:      err,
		}
	}

	return mapQuote(symbol, result)
}

// mapQuote converts the price and summaryDetail modules into a LiveQuote.
func mapQuote(symbol string, result *yahoo.QuoteSummaryResult) (*models.LiveQuote, error) {
	if result == nil || result.Price == nil {
		return nil, &QuoteUnavailableError{Symbol: symbol, Err: errors.New("response missing price module")}
	}

	quote := &models.LiveQuote{
		Symbol:       result.Price.Symbol,
		ShortName:    result.Price.ShortName,
		CurrentPrice: result.Price.RegularMarketPrice.Raw,
		Currency:     result.Price.Currency,
		MarketCap:    result.Price.MarketCap.Raw,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}

	if result.SummaryDetail != nil {
		quote.PERatio = result.SummaryDetail.TrailingPE.Raw
		quote.DividendYield = result.SummaryDetail.DividendYield.Raw
	}

	return quote, nil
}
