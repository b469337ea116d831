package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/equitas/internal/models"
)

var (
	// ErrMissingTicker is returned when a submission has no ticker
	ErrMissingTicker = errors.New("missing company ticker")

	// ErrAccessDenied is returned when a caller reads or mutates another user's report
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidCredentials is returned for unknown users and wrong passwords alike
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnsupportedFormat is returned for unknown export formats
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ExportFormat selects the document rendering of a report
type ExportFormat string

const (
	ExportFormatText ExportFormat = "text"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportedDocument is a rendered report ready to be served as an attachment
type ExportedDocument struct {
	FileName    string
	ContentType string
	Body        []byte
}

// ReportService is the report API consumed by handlers and the CLI
type ReportService interface {
	// Submit creates a pending report and starts generation without waiting for it
	Submit(ctx context.Context, owner, ticker string) (*models.Report, error)

	// Generate runs the pipeline for an existing pending report and writes its terminal state
	Generate(ctx context.Context, reportID, ticker string)

	List(ctx context.Context, requester models.Identity) ([]*models.Report, error)
	ListAll(ctx context.Context) ([]*models.Report, error)
	Get(ctx context.Context, requester models.Identity, id string) (*models.Report, error)
	Delete(ctx context.Context, requester models.Identity, id string) error
	Export(ctx context.Context, requester models.Identity, id string, format ExportFormat) (*ExportedDocument, error)
}

// AuthService manages accounts and bearer tokens
type AuthService interface {
	Signup(ctx context.Context, userName, password string) (string, *models.User, error)
	Login(ctx context.Context, userName, password string) (string, *models.User, error)
	VerifyToken(token string) (*models.Identity, error)
}
