package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/equitas/internal/models"
)

var (
	// ErrReportNotFound is returned when a report id does not exist
	ErrReportNotFound = errors.New("report not found")

	// ErrReportFinalized is returned when updating a report already in a terminal state
	ErrReportFinalized = errors.New("report already finalized")

	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user whose name is taken
	ErrUserExists = errors.New("user already exists")
)

// ReportStorage persists report records. Writes are durable before they return.
type ReportStorage interface {
	// CreateReport stores a new pending report for owner and returns it
	CreateReport(ctx context.Context, owner, ticker string) (*models.Report, error)

	// UpdateStatus performs the terminal transition of a pending report.
	// Returns ErrReportFinalized if the report is no longer pending.
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus, content string) error

	// GetReport returns ErrReportNotFound for unknown ids
	GetReport(ctx context.Context, id string) (*models.Report, error)

	// ListReportsByOwner returns the owner's reports, newest first
	ListReportsByOwner(ctx context.Context, owner string) ([]*models.Report, error)

	// ListReports returns every report, newest first
	ListReports(ctx context.Context) ([]*models.Report, error)

	DeleteReport(ctx context.Context, id string) error
}

// UserStorage persists user accounts
type UserStorage interface {
	// CreateUser returns ErrUserExists when the user name is taken
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByName(ctx context.Context, userName string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// StorageManager exposes the storage backends
type StorageManager interface {
	ReportStorage() ReportStorage
	UserStorage() UserStorage
	Close() error
}
