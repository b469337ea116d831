package fundamentals

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
)

// Loader reads the static company metadata and financial ratio files.
// Both files are read on every call; nothing is cached between requests.
type Loader struct {
	metadataPath   string
	financialsPath string
	logger         arbor.ILogger
}

// Compile-time assertion
var _ interfaces.FundamentalsLoader = (*Loader)(nil)

// NewLoader creates a loader over the configured data directory
func NewLoader(config common.DataConfig, logger arbor.ILogger) *Loader {
	return &Loader{
		metadataPath:   filepath.Join(config.Dir, config.MetadataFile),
		financialsPath: filepath.Join(config.Dir, config.FinancialsFile),
		logger:         logger,
	}
}

// Load resolves ticker to a company and returns its financials, most recent year first.
func (l *Loader) Load(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	var metadata []models.CompanyMetadata
	if err := readJSON(l.metadataPath, &metadata); err != nil {
		return nil, &common.DataSourceError{Source: l.metadataPath, Err: err}
	}

	var records []models.FinancialRecord
	if err := readJSON(l.financialsPath, &records); err != nil {
		return nil, &common.DataSourceError{Source: l.financialsPath, Err: err}
	}

	meta, ok := MatchCompany(metadata, ticker)
	if !ok {
		return nil, &common.NotFoundError{Ticker: ticker}
	}

	financials := CompanyFinancials(records, meta.CompanyID)

	l.logger.Debug().
		Str("ticker", ticker).
		Str("company_id", string(meta.CompanyID)).
		Str("company_name", meta.CompanyName).
		Int("years", len(financials)).
		Msg("Fundamentals loaded")

	return &models.Fundamentals{
		Metadata:   meta,
		Financials: financials,
	}, nil
}

// MatchCompany returns the first entry, in source order, whose ticker starts
// with the normalized symbol. Prefix collisions ("AA" vs "AAL") resolve to
// whichever entry is listed first.
func MatchCompany(metadata []models.CompanyMetadata, ticker string) (models.CompanyMetadata, bool) {
	symbol := common.NormalizeTicker(ticker)
	if symbol == "" {
		return models.CompanyMetadata{}, false
	}

	for _, m := range metadata {
		if m.Ticker == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(m.Ticker), symbol) {
			return m, true
		}
	}
	return models.CompanyMetadata{}, false
}

// CompanyFinancials filters records for companyID, derives the ratios and
// sorts by fiscal year descending.
func CompanyFinancials(records []models.FinancialRecord, companyID models.FlexID) []models.FinancialRecord {
	financials := make([]models.FinancialRecord, 0)
	for _, r := range records {
		if r.CompanyID != companyID {
			continue
		}
		r.ReturnOnAssets = ratio(r.NetIncome, r.TotalAsset)
		r.CurrentRatio = ratio(r.TotalCurrentAsset, r.TotalCurrentLiability)
		r.DebtToEquity = ratio(r.TotalLiability, r.TotalEquity)
		financials = append(financials, r)
	}

	sort.SliceStable(financials, func(i, j int) bool {
		return financials[i].FiscalYear > financials[j].FiscalYear
	})

	return financials
}

// ratio divides only when both operands are present and non-zero.
func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *numerator == 0 || *denominator == 0 {
		return nil
	}
	v := *numerator / *denominator
	return &v
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
