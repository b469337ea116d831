package interfaces

import (
	"context"

	"github.com/ternarybob/equitas/internal/models"
)

// FundamentalsLoader resolves a ticker against the static fundamentals dataset
type FundamentalsLoader interface {
	// Load returns the company metadata and financials, most recent year first.
	// Fails with *common.NotFoundError or *common.DataSourceError.
	Load(ctx context.Context, ticker string) (*models.Fundamentals, error)
}

// QuoteFetcher retrieves a live market snapshot. It never fails: any error
// is absorbed and reported as a nil quote.
type QuoteFetcher interface {
	Fetch(ctx context.Context, ticker string) *models.LiveQuote
}

// PromptComposer renders fundamentals and an optional quote into a prompt
type PromptComposer interface {
	Compose(fundamentals *models.Fundamentals, quote *models.LiveQuote) string
}
