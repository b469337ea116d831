package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexID is an identifier that may be encoded as a JSON number or string.
// Strings keep their literal text. Numbers are stored in their shortest decimal
// form, so 1001, 1001.0 and 1.001e3 are the same id.
type FlexID string

// UnmarshalJSON accepts 42, 42.0, "42" and "C-42".
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = FlexID(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// CompanyMetadata is the static identity record for one company
type CompanyMetadata struct {
	CompanyID         FlexID `json:"company_id"`
	Ticker            string `json:"ticker"` // e.g., "AAL US"
	CompanyName       string `json:"company_name"`
	CountryName       string `json:"country_name"`
	SecurityType      string `json:"security_type"`
	IndustrySectorID  FlexID `json:"industry_sector_num"`
	ExchangeCountryID FlexID `json:"exchange_country_id"`
}

// FinancialRecord is one fiscal year of fundamentals for a company.
// Nil pointers mean the value is absent in the dataset.
type FinancialRecord struct {
	CompanyID             FlexID   `json:"company_id"`
	FiscalYear            int      `json:"fiscal_year"`
	TotalAsset            *float64 `json:"total_asset"`
	TotalLiability        *float64 `json:"total_liab"`
	TotalEquity           *float64 `json:"total_equity"`
	NetIncome             *float64 `json:"net_income"`
	TotalRevenue          *float64 `json:"total_revenue"`
	TotalCurrentAsset     *float64 `json:"total_current_asset"`
	TotalCurrentLiability *float64 `json:"total_current_liab"`

	// Derived by the fundamentals loader
	ReturnOnAssets *float64 `json:"return_on_assets"` // NetIncome / TotalAsset
	CurrentRatio   *float64 `json:"current_ratio"`    // TotalCurrentAsset / TotalCurrentLiability
	DebtToEquity   *float64 `json:"debt_to_equity"`   // TotalLiability / TotalEquity
}

// Fundamentals is a resolved company with its financial history, most recent year first
type Fundamentals struct {
	Metadata   CompanyMetadata   `json:"metadata"`
	Financials []FinancialRecord `json:"financials"`
}
