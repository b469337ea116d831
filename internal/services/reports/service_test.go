package reports

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/services/fundamentals"
	"github.com/ternarybob/equitas/internal/services/prompt"
	"github.com/ternarybob/equitas/internal/storage/badger"
)

// stubLoader implements interfaces.FundamentalsLoader
type stubLoader struct {
	loadFunc func(ctx context.Context, ticker string) (*models.Fundamentals, error)
}

func (s *stubLoader) Load(ctx context.Context, ticker string) (*models.Fundamentals, error) {
	return s.loadFunc(ctx, ticker)
}

// stubQuotes implements interfaces.QuoteFetcher
type stubQuotes struct {
	quote *models.LiveQuote
	calls int
}

func (s *stubQuotes) Fetch(ctx context.Context, ticker string) *models.LiveQuote {
	s.calls++
	return s.quote
}

// stubGenerator implements interfaces.TextGenerator and records the last request
type stubGenerator struct {
	mu           sync.Mutex
	generateFunc func(ctx context.Context, req interfaces.GenerationRequest) (string, error)
	requests     []interfaces.GenerationRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.generateFunc(ctx, req)
}

func (s *stubGenerator) Provider() string { return "stub" }

func (s *stubGenerator) lastRequest(t *testing.T) interfaces.GenerationRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "generator was not called")
	return s.requests[len(s.requests)-1]
}

func f64(v float64) *float64 { return &v }

func tenYears() *models.Fundamentals {
	f := &models.Fundamentals{
		Metadata: models.CompanyMetadata{CompanyID: "1", Ticker: "AAL US", CompanyName: "American Airlines Group Inc"},
	}
	for year := 2023; year > 2013; year-- {
		f.Financials = append(f.Financials, models.FinancialRecord{
			CompanyID:    "1",
			FiscalYear:   year,
			TotalRevenue: f64(float64(year)),
		})
	}
	return f
}

func newTestStorage(t *testing.T) interfaces.ReportStorage {
	t.Helper()
	manager, err := badger.NewManager(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })
	return manager.ReportStorage()
}

func newTestService(t *testing.T, loader interfaces.FundamentalsLoader, quotes interfaces.QuoteFetcher, generator interfaces.TextGenerator) (*Service, interfaces.ReportStorage) {
	t.Helper()
	storage := newTestStorage(t)
	service := NewService(storage, loader, quotes, prompt.Composer{}, generator, nil, common.NewDefaultConfig(), arbor.NewLogger())
	return service, storage
}

// generate creates a pending report and runs the pipeline synchronously
func generate(t *testing.T, service *Service, storage interfaces.ReportStorage, ticker string) *models.Report {
	t.Helper()
	ctx := context.Background()

	report, err := storage.CreateReport(ctx, "usr_1", ticker)
	require.NoError(t, err)

	service.Generate(ctx, report.ID, ticker)

	got, err := storage.GetReport(ctx, report.ID)
	require.NoError(t, err)
	return got
}

func TestGenerate_CompletesWithNarrative(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	quotes := &stubQuotes{quote: &models.LiveQuote{Symbol: "AAL", CurrentPrice: f64(10.7), Currency: "USD"}}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return "Executive Summary\n\nConclusion", nil
	}}
	service, storage := newTestService(t, loader, quotes, generator)

	report := generate(t, service, storage, "AAL US")

	assert.Equal(t, models.ReportStatusCompleted, report.Status)
	assert.Equal(t, "Executive Summary\n\nConclusion", report.Content)

	req := generator.lastRequest(t)
	assert.Equal(t, prompt.SystemInstruction, req.System)
	assert.Equal(t, 1000, req.MaxTokens)
	assert.Contains(t, req.Prompt, "Live Market Data:")
	assert.Equal(t, 10, strings.Count(req.Prompt, "\nYear "))
}

func TestGenerate_UnknownTickerFails(t *testing.T) {
	loader := fundamentals.NewLoader(common.DataConfig{
		Dir:            "../fundamentals/testdata",
		MetadataFile:   "company_metadata.json",
		FinancialsFile: "company_financial_ratios.json",
	}, arbor.NewLogger())
	quotes := &stubQuotes{}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return "should not be called", nil
	}}
	service, storage := newTestService(t, loader, quotes, generator)

	report := generate(t, service, storage, "ZZZZ")

	assert.Equal(t, models.ReportStatusFailed, report.Status)
	assert.True(t, strings.HasPrefix(report.Content, "Error: Company metadata not found for ticker: ZZZZ"), report.Content)
	assert.Zero(t, quotes.calls, "quote must not be fetched after a fundamentals failure")
	assert.Empty(t, generator.requests)
}

func TestGenerate_QuoteFailureStillCompletes(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	quotes := &stubQuotes{quote: nil}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return "Narrative", nil
	}}
	service, storage := newTestService(t, loader, quotes, generator)

	report := generate(t, service, storage, "AAL US")

	assert.Equal(t, models.ReportStatusCompleted, report.Status)
	assert.Equal(t, "Narrative", report.Content)
	assert.Equal(t, 1, quotes.calls)

	req := generator.lastRequest(t)
	assert.NotContains(t, req.Prompt, "Live Market Data:")
	assert.NotContains(t, req.Prompt, "Current Price")
}

func TestGenerate_EndpointErrorFails(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return "", &common.GenerationEndpointError{Provider: "claude", StatusCode: 529, Err: errors.New("overloaded")}
	}}
	service, storage := newTestService(t, loader, &stubQuotes{}, generator)

	report := generate(t, service, storage, "AAL US")

	assert.Equal(t, models.ReportStatusFailed, report.Status)
	assert.Equal(t, "Error: claude generation request failed (status 529): overloaded", report.Content)
}

func TestGenerate_MalformedResponseFails(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return "", &common.MalformedResponseError{Provider: "claude", Detail: "no text content in response"}
	}}
	service, storage := newTestService(t, loader, &stubQuotes{}, generator)

	report := generate(t, service, storage, "AAL US")

	assert.Equal(t, models.ReportStatusFailed, report.Status)
	assert.True(t, strings.HasPrefix(report.Content, "Error: "))
}

func TestGenerate_PanicMarksFailed(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		panic("dataset exploded")
	}}
	service, storage := newTestService(t, loader, &stubQuotes{}, &stubGenerator{})

	report := generate(t, service, storage, "AAL US")

	assert.Equal(t, models.ReportStatusFailed, report.Status)
	assert.Equal(t, "Error: dataset exploded", report.Content)
}

func TestGenerate_SecondRunDoesNotOverwrite(t *testing.T) {
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	text := "first"
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		return text, nil
	}}
	service, storage := newTestService(t, loader, &stubQuotes{}, generator)

	report := generate(t, service, storage, "AAL US")
	require.Equal(t, "first", report.Content)

	text = "second"
	service.Generate(context.Background(), report.ID, "AAL US")

	got, err := storage.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
}

func TestSubmit_ReturnsBeforeGenerationFinishes(t *testing.T) {
	release := make(chan struct{})
	loader := &stubLoader{loadFunc: func(ctx context.Context, ticker string) (*models.Fundamentals, error) {
		return tenYears(), nil
	}}
	generator := &stubGenerator{generateFunc: func(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
		<-release
		return "Narrative", nil
	}}
	service, storage := newTestService(t, loader, &stubQuotes{}, generator)
	ctx := context.Background()

	report, err := service.Submit(ctx, "usr_1", "  AAL US ")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, "AAL US", report.Ticker)

	pending, err := storage.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, pending.Status)

	close(release)

	require.Eventually(t, func() bool {
		got, err := storage.GetReport(ctx, report.ID)
		return err == nil && got.Status == models.ReportStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestSubmit_MissingTicker(t *testing.T) {
	service, storage := newTestService(t, &stubLoader{}, &stubQuotes{}, &stubGenerator{})

	for _, ticker := range []string{"", "   "} {
		_, err := service.Submit(context.Background(), "usr_1", ticker)
		assert.ErrorIs(t, err, interfaces.ErrMissingTicker)
	}

	all, err := storage.ListReports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all, "no record is created for a rejected submission")
}

func TestGetAndDelete_Ownership(t *testing.T) {
	service, storage := newTestService(t, &stubLoader{}, &stubQuotes{}, &stubGenerator{})
	ctx := context.Background()

	report, err := storage.CreateReport(ctx, "usr_owner", "AAL US")
	require.NoError(t, err)

	owner := models.Identity{UserID: "usr_owner", Role: models.RoleUser}
	other := models.Identity{UserID: "usr_other", Role: models.RoleUser}
	admin := models.Identity{UserID: "usr_admin", Role: models.RoleAdmin}

	_, err = service.Get(ctx, owner, report.ID)
	assert.NoError(t, err)

	_, err = service.Get(ctx, other, report.ID)
	assert.ErrorIs(t, err, interfaces.ErrAccessDenied)

	_, err = service.Get(ctx, admin, report.ID)
	assert.NoError(t, err)

	_, err = service.Get(ctx, owner, "rpt_missing")
	assert.ErrorIs(t, err, interfaces.ErrReportNotFound)

	assert.ErrorIs(t, service.Delete(ctx, other, report.ID), interfaces.ErrAccessDenied)
	require.NoError(t, service.Delete(ctx, owner, report.ID))

	_, err = service.Get(ctx, owner, report.ID)
	assert.ErrorIs(t, err, interfaces.ErrReportNotFound)
}

func TestList_OnlyOwnReports(t *testing.T) {
	service, storage := newTestService(t, &stubLoader{}, &stubQuotes{}, &stubGenerator{})
	ctx := context.Background()

	_, err := storage.CreateReport(ctx, "usr_a", "AAL US")
	require.NoError(t, err)
	_, err = storage.CreateReport(ctx, "usr_b", "MSFT US")
	require.NoError(t, err)

	reports, err := service.List(ctx, models.Identity{UserID: "usr_a"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "AAL US", reports[0].Ticker)

	all, err := service.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// stubPDF implements interfaces.PDFService
type stubPDF struct {
	markdown string
	title    string
}

func (s *stubPDF) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.markdown = markdown
	s.title = title
	return []byte("%PDF-1.4 stub"), nil
}

func (s *stubPDF) PageCount(pdf []byte) (int, error) { return 1, nil }

func TestExport(t *testing.T) {
	storage := newTestStorage(t)
	pdf := &stubPDF{}
	service := NewService(storage, &stubLoader{}, &stubQuotes{}, prompt.Composer{}, &stubGenerator{}, pdf, common.NewDefaultConfig(), arbor.NewLogger())
	ctx := context.Background()
	owner := models.Identity{UserID: "usr_1"}

	report, err := storage.CreateReport(ctx, owner.UserID, "AAL US")
	require.NoError(t, err)
	require.NoError(t, storage.UpdateStatus(ctx, report.ID, models.ReportStatusCompleted, "Body text"))

	text, err := service.Export(ctx, owner, report.ID, interfaces.ExportFormatText)
	require.NoError(t, err)
	assert.Equal(t, "report-AAL_US.md", text.FileName)
	assert.True(t, strings.HasPrefix(string(text.Body), "# AAL US Equity Research Report\n"))
	assert.Contains(t, string(text.Body), "Body text")
	assert.Contains(t, string(text.Body), "Status: completed")

	doc, err := service.Export(ctx, owner, report.ID, interfaces.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "report-AAL_US.pdf", doc.FileName)
	assert.Equal(t, "AAL US Equity Research Report", pdf.title)
	assert.Equal(t, string(text.Body), pdf.markdown)

	_, err = service.Export(ctx, owner, report.ID, "docx")
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedFormat)

	_, err = service.Export(ctx, models.Identity{UserID: "usr_2"}, report.ID, interfaces.ExportFormatText)
	assert.ErrorIs(t, err, interfaces.ErrAccessDenied)
}
