package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/equitas/internal/app"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/ternarybob/equitas/internal/services/reports"
)

var generateCmd = &cobra.Command{
	Use:   "generate <ticker>",
	Short: "Generate a report for a ticker and print it",
	Long:  `Runs the full report pipeline in the foreground against an in-memory record and prints the narrative.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ticker := strings.TrimSpace(args[0])
	if ticker == "" {
		return interfaces.ErrMissingTicker
	}

	pipeline, err := app.NewPipeline(config, logger)
	if err != nil {
		return err
	}

	store := &memoryReportStorage{}
	service := reports.NewService(
		store,
		pipeline.FundamentalsLoader,
		pipeline.QuoteFetcher,
		pipeline.PromptComposer,
		pipeline.TextGenerator,
		pipeline.PDFService,
		config,
		logger,
	)

	report, err := store.CreateReport(cmd.Context(), "cli", ticker)
	if err != nil {
		return err
	}

	service.Generate(context.Background(), report.ID, ticker)

	if store.report.Status != models.ReportStatusCompleted {
		return errors.New(store.report.Content)
	}

	fmt.Fprintln(cmd.OutOrStdout(), store.report.Content)
	return nil
}

// memoryReportStorage holds the single report of a CLI run
type memoryReportStorage struct {
	report *models.Report
}

func (m *memoryReportStorage) CreateReport(ctx context.Context, owner, ticker string) (*models.Report, error) {
	m.report = &models.Report{
		ID:     common.NewReportID(),
		Owner:  owner,
		Ticker: ticker,
		Status: models.ReportStatusPending,
	}
	return m.report, nil
}

func (m *memoryReportStorage) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, content string) error {
	if m.report == nil || m.report.ID != id {
		return interfaces.ErrReportNotFound
	}
	if m.report.Status.IsTerminal() {
		return interfaces.ErrReportFinalized
	}
	m.report.Status = status
	m.report.Content = content
	return nil
}

func (m *memoryReportStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if m.report == nil || m.report.ID != id {
		return nil, interfaces.ErrReportNotFound
	}
	return m.report, nil
}

func (m *memoryReportStorage) ListReportsByOwner(ctx context.Context, owner string) ([]*models.Report, error) {
	return m.ListReports(ctx)
}

func (m *memoryReportStorage) ListReports(ctx context.Context) ([]*models.Report, error) {
	if m.report == nil {
		return nil, nil
	}
	return []*models.Report{m.report}, nil
}

func (m *memoryReportStorage) DeleteReport(ctx context.Context, id string) error {
	m.report = nil
	return nil
}

// Compile-time assertion
var _ interfaces.ReportStorage = (*memoryReportStorage)(nil)
