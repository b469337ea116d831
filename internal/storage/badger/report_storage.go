package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ReportStorage implements the ReportStorage interface for Badger
type ReportStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewReportStorage creates a new ReportStorage instance
func NewReportStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ReportStorage {
	return &ReportStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ReportStorage) CreateReport(ctx context.Context, owner, ticker string) (*models.Report, error) {
	now := time.Now()
	report := &models.Report{
		ID:        common.NewReportID(),
		Owner:     owner,
		Ticker:    ticker,
		Status:    models.ReportStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Store().Insert(report.ID, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.logger.Debug().
		Str("report_id", report.ID).
		Str("owner", owner).
		Str("ticker", ticker).
		Msg("Report created")

	return report, nil
}

// UpdateStatus reads and writes inside one badger transaction so a report
// can only leave the pending state once.
func (s *ReportStorage) UpdateStatus(ctx context.Context, id string, status models.ReportStatus, content string) error {
	store := s.db.Store()

	err := store.Badger().Update(func(tx *badger.Txn) error {
		var report models.Report
		if err := store.TxGet(tx, id, &report); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return interfaces.ErrReportNotFound
			}
			return err
		}

		if report.Status.IsTerminal() {
			return interfaces.ErrReportFinalized
		}

		report.Status = status
		report.Content = content
		report.UpdatedAt = time.Now()

		return store.TxUpdate(tx, id, &report)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrReportNotFound) || errors.Is(err, interfaces.ErrReportFinalized) {
			return err
		}
		return fmt.Errorf("failed to update report %s: %w", id, err)
	}

	return nil
}

func (s *ReportStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.db.Store().Get(id, &report); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, interfaces.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

func (s *ReportStorage) ListReportsByOwner(ctx context.Context, owner string) ([]*models.Report, error) {
	var reports []models.Report
	query := badgerhold.Where("Owner").Eq(owner).Index("Owner")
	if err := s.db.Store().Find(&reports, query); err != nil {
		return nil, fmt.Errorf("failed to list reports for owner: %w", err)
	}
	return newestFirst(reports), nil
}

func (s *ReportStorage) ListReports(ctx context.Context) ([]*models.Report, error) {
	var reports []models.Report
	if err := s.db.Store().Find(&reports, nil); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return newestFirst(reports), nil
}

func (s *ReportStorage) DeleteReport(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Report{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return interfaces.ErrReportNotFound
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// newestFirst orders by CreatedAt descending, breaking ties on ID for a stable listing.
func newestFirst(reports []models.Report) []*models.Report {
	sort.SliceStable(reports, func(i, j int) bool {
		if reports[i].CreatedAt.Equal(reports[j].CreatedAt) {
			return reports[i].ID > reports[j].ID
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	result := make([]*models.Report, len(reports))
	for i := range reports {
		result[i] = &reports[i]
	}
	return result
}
