package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
)

const (
	// SystemInstruction is sent as the system message with every report prompt
	SystemInstruction = "You are a financial research assistant that writes clear and insightful reports"

	// MaxFinancialYears caps the financial history included in a prompt
	MaxFinancialYears = 10

	notAvailable = "N/A"
)

// reportSections are the sections the generated report must contain, in order
var reportSections = []string{
	"Executive Summary",
	"Business and Market Overview",
	"Financial Performance and Trends",
	"Key Ratios and Financial Health",
	"Investment Insights and Valuation Perspective",
	"Risks and Considerations",
	"Conclusion and Recommendation",
}

// Composer implements interfaces.PromptComposer
type Composer struct{}

// Compile-time assertion
var _ interfaces.PromptComposer = Composer{}

// Compose delegates to the package-level Compose
func (Composer) Compose(f *models.Fundamentals, q *models.LiveQuote) string {
	return Compose(f, q)
}

// Compose renders the research prompt. It has no side effects and returns
// byte-identical output for identical inputs. The live market block is
// omitted entirely when q is nil.
func Compose(f *models.Fundamentals, q *models.LiveQuote) string {
	var b strings.Builder

	b.WriteString("You are an expert financial analyst. Write a comprehensive equity research report for the following company:\n\n")

	writeMetadata(&b, f.Metadata)
	b.WriteString("\n")

	if q != nil {
		writeQuote(&b, q)
		b.WriteString("\n")
	}

	b.WriteString("Use the financials provided below to analyze performance, financial health, and valuation.\n\n")

	writeFinancials(&b, f.Financials)
	b.WriteString("\n")

	b.WriteString("Your report should include:\n")
	for i, section := range reportSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}
	b.WriteString("\n")

	b.WriteString("Write clearly and concisely in a professional tone.")

	return b.String()
}

func writeMetadata(b *strings.Builder, m models.CompanyMetadata) {
	fmt.Fprintf(b, "Company Name       : %s\n", text(m.CompanyName))
	fmt.Fprintf(b, "Ticker             : %s\n", text(m.Ticker))
	fmt.Fprintf(b, "Country            : %s\n", text(m.CountryName))
	fmt.Fprintf(b, "Security Type      : %s\n", text(m.SecurityType))
	fmt.Fprintf(b, "Industry Sector ID : %s\n", text(string(m.IndustrySectorID)))
	fmt.Fprintf(b, "Exchange Country ID: %s\n", text(string(m.ExchangeCountryID)))
}

func writeQuote(b *strings.Builder, q *models.LiveQuote) {
	price := number(q.CurrentPrice)
	if q.CurrentPrice != nil && q.Currency != "" {
		price += " " + q.Currency
	}

	b.WriteString("Live Market Data:\n")
	fmt.Fprintf(b, "- Symbol         : %s\n", text(q.Symbol))
	fmt.Fprintf(b, "- Current Price  : %s\n", price)
	fmt.Fprintf(b, "- Market Cap     : %s\n", number(q.MarketCap))
	fmt.Fprintf(b, "- P/E Ratio      : %s\n", number(q.PERatio))
	fmt.Fprintf(b, "- Dividend Yield : %s\n", number(q.DividendYield))
}

func writeFinancials(b *strings.Builder, financials []models.FinancialRecord) {
	b.WriteString("Financial Data (last 10 years):\n")

	if len(financials) == 0 {
		b.WriteString("No historical financial data available.\n")
		return
	}

	if len(financials) > MaxFinancialYears {
		financials = financials[:MaxFinancialYears]
	}

	for _, f := range financials {
		fmt.Fprintf(b, "Year %d: Revenue = %s, Net Income = %s, Assets = %s, ROA = %s, Current Ratio = %s, D/E = %s\n",
			f.FiscalYear,
			number(f.TotalRevenue),
			number(f.NetIncome),
			number(f.TotalAsset),
			number(f.ReturnOnAssets),
			number(f.CurrentRatio),
			number(f.DebtToEquity),
		)
	}
}

// number renders the shortest exact decimal form, or N/A for nil.
func number(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func text(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
