package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/services/prompt"
)

// Service orchestrates report generation and owns access to report records
type Service struct {
	storage   interfaces.ReportStorage
	loader    interfaces.FundamentalsLoader
	quotes    interfaces.QuoteFetcher
	composer  interfaces.PromptComposer
	generator interfaces.TextGenerator
	pdf       interfaces.PDFService
	config    *common.Config
	logger    arbor.ILogger
}

// Compile-time assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a new report service
func NewService(
	storage interfaces.ReportStorage,
	loader interfaces.FundamentalsLoader,
	quotes interfaces.QuoteFetcher,
	composer interfaces.PromptComposer,
	generator interfaces.TextGenerator,
	pdf interfaces.PDFService,
	config *common.Config,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:   storage,
		loader:    loader,
		quotes:    quotes,
		composer:  composer,
		generator: generator,
		pdf:       pdf,
		config:    config,
		logger:    logger,
	}
}

// Submit stores a pending report and starts its generation in the background.
// It returns as soon as the pending record is durable; the caller never waits
// on the pipeline.
func (s *Service) Submit(ctx context.Context, owner, ticker string) (*models.Report, error) {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return nil, interfaces.ErrMissingTicker
	}

	report, err := s.storage.CreateReport(ctx, owner, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("ticker", ticker).
		Str("owner", owner).
		Msg("Report generation started")

	// Detached from the request so generation outlives the HTTP exchange
	reportID := report.ID
	common.SafeGo(s.logger, "generate-report-"+reportID, func() {
		s.Generate(context.Background(), reportID, ticker)
	})

	return report, nil
}

// Generate runs the pipeline for a pending report and records exactly one
// terminal state: completed with the narrative or failed with "Error: <message>".
func (s *Service) Generate(ctx context.Context, reportID, ticker string) {
	startTime := time.Now()

	content, err := s.run(ctx, ticker)

	status := models.ReportStatusCompleted
	if err != nil {
		status = models.ReportStatusFailed
		content = "Error: " + err.Error()
		s.logger.Error().
			Str("report_id", reportID).
			Str("ticker", ticker).
			Err(err).
			Dur("duration", time.Since(startTime)).
			Msg("Report generation failed")
	}

	if updateErr := s.storage.UpdateStatus(ctx, reportID, status, content); updateErr != nil {
		s.logger.Error().
			Str("report_id", reportID).
			Str("status", string(status)).
			Err(updateErr).
			Msg("Failed to record report result")
		return
	}

	if status == models.ReportStatusCompleted {
		s.logger.Info().
			Str("report_id", reportID).
			Str("ticker", ticker).
			Int("content_length", len(content)).
			Dur("duration", time.Since(startTime)).
			Msg("Report generation completed")
	}
}

// run executes fundamentals, quote, prompt and generation in order.
func (s *Service) run(ctx context.Context, ticker string) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = ""
			err = fmt.Errorf("%v", r)
		}
	}()

	fundamentals, err := s.loader.Load(ctx, ticker)
	if err != nil {
		return "", err
	}

	quote := s.quotes.Fetch(ctx, ticker)

	request := interfaces.GenerationRequest{
		System: prompt.SystemInstruction,
		Prompt: s.composer.Compose(fundamentals, quote),
	}
	if s.config != nil {
		request.MaxTokens = s.config.LLM.MaxTokens
	}

	return s.generator.Generate(ctx, request)
}

// List returns the requester's reports, newest first
func (s *Service) List(ctx context.Context, requester models.Identity) ([]*models.Report, error) {
	return s.storage.ListReportsByOwner(ctx, requester.UserID)
}

// ListAll returns every report, newest first
func (s *Service) ListAll(ctx context.Context) ([]*models.Report, error) {
	return s.storage.ListReports(ctx)
}

// Get returns a report the requester owns. Admins may read any report.
func (s *Service) Get(ctx context.Context, requester models.Identity, id string) (*models.Report, error) {
	report, err := s.storage.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.Owner != requester.UserID && !requester.IsAdmin() {
		return nil, interfaces.ErrAccessDenied
	}

	return report, nil
}

// Delete removes a report the requester owns
func (s *Service) Delete(ctx context.Context, requester models.Identity, id string) error {
	report, err := s.storage.GetReport(ctx, id)
	if err != nil {
		return err
	}

	if report.Owner != requester.UserID {
		return interfaces.ErrAccessDenied
	}

	if err := s.storage.DeleteReport(ctx, id); err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}

	s.logger.Info().
		Str("report_id", id).
		Str("owner", requester.UserID).
		Msg("Report deleted")

	return nil
}

// Export renders a readable report as a markdown or PDF attachment
func (s *Service) Export(ctx context.Context, requester models.Identity, id string, format interfaces.ExportFormat) (*interfaces.ExportedDocument, error) {
	report, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	markdown := RenderMarkdown(report)
	baseName := "report-" + fileSafe(report.Ticker)

	switch format {
	case interfaces.ExportFormatText:
		return &interfaces.ExportedDocument{
			FileName:    baseName + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(markdown),
		}, nil

	case interfaces.ExportFormatPDF:
		if s.pdf == nil {
			return nil, errors.New("pdf export not available")
		}
		body, err := s.pdf.ConvertMarkdownToPDF(markdown, Title(report))
		if err != nil {
			return nil, fmt.Errorf("failed to render pdf: %w", err)
		}
		return &interfaces.ExportedDocument{
			FileName:    baseName + ".pdf",
			ContentType: "application/pdf",
			Body:        body,
		}, nil

	default:
		return nil, interfaces.ErrUnsupportedFormat
	}
}

// Title returns the document heading for a report
func Title(report *models.Report) string {
	return report.Ticker + " Equity Research Report"
}

// RenderMarkdown lays out a report as a markdown document
func RenderMarkdown(report *models.Report) string {
	var b strings.Builder
	b.WriteString("# " + Title(report) + "\n\n")
	fmt.Fprintf(&b, "_Status: %s | Generated: %s_\n\n", report.Status, report.CreatedAt.UTC().Format("2006-01-02 15:04 MST"))
	b.WriteString(report.Content)
	b.WriteString("\n")
	return b.String()
}

// fileSafe reduces a ticker to characters safe in a download file name
func fileSafe(ticker string) string {
	var b strings.Builder
	for _, r := range ticker {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		case r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "report"
	}
	return b.String()
}
