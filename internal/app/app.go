package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/equitas/internal/common"
	"github.com/ternarybob/equitas/internal/handlers"
	"github.com/ternarybob/equitas/internal/interfaces"
	"github.com/ternarybob/equitas/internal/services/auth"
	"github.com/ternarybob/equitas/internal/services/fundamentals"
	"github.com/ternarybob/equitas/internal/services/llm"
	"github.com/ternarybob/equitas/internal/services/pdf"
	"github.com/ternarybob/equitas/internal/services/prompt"
	"github.com/ternarybob/equitas/internal/services/quote"
	"github.com/ternarybob/equitas/internal/services/reports"
	"github.com/ternarybob/equitas/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	StorageManager interfaces.StorageManager

	// Research pipeline
	FundamentalsLoader interfaces.FundamentalsLoader
	QuoteFetcher       interfaces.QuoteFetcher
	PromptComposer     interfaces.PromptComposer
	TextGenerator      interfaces.TextGenerator
	PDFService         interfaces.PDFService

	// Services
	ReportService *reports.Service
	AuthService   *auth.Service

	// HTTP handlers
	ReportHandler *handlers.ReportHandler
	AuthHandler   *handlers.AuthHandler
	StatusHandler *handlers.StatusHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", app.TextGenerator.Provider()).
		Str("data_dir", cfg.Data.Dir).
		Msg("Application initialized")

	return app, nil
}

// NewPipeline builds the research pipeline without storage or HTTP, for
// one-shot CLI use.
func NewPipeline(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	if err := app.initPipeline(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initPipeline() error {
	a.FundamentalsLoader = fundamentals.NewLoader(a.Config.Data, a.Logger)
	a.QuoteFetcher = quote.NewYahooFetcher(a.Config.Quote, a.Logger)
	a.PromptComposer = prompt.Composer{}

	generator, err := llm.NewGenerator(context.Background(), a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create text generator: %w", err)
	}
	a.TextGenerator = generator

	a.PDFService = pdf.NewService(a.Logger)
	return nil
}

func (a *App) initServices() error {
	if err := a.initPipeline(); err != nil {
		return err
	}

	a.ReportService = reports.NewService(
		a.StorageManager.ReportStorage(),
		a.FundamentalsLoader,
		a.QuoteFetcher,
		a.PromptComposer,
		a.TextGenerator,
		a.PDFService,
		a.Config,
		a.Logger,
	)

	a.AuthService = auth.NewService(a.StorageManager.UserStorage(), a.Config.Auth, a.Logger)
	if err := a.AuthService.EnsureAdmin(context.Background()); err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}

	if a.Config.IsProduction() && a.Config.Auth.JWTSecret == common.NewDefaultConfig().Auth.JWTSecret {
		a.Logger.Warn().Msg("Using the default JWT secret in production, set EQUITAS_JWT_SECRET")
	}

	return nil
}

func (a *App) initHandlers() {
	a.ReportHandler = handlers.NewReportHandler(a.ReportService, a.Logger)
	a.AuthHandler = handlers.NewAuthHandler(a.AuthService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(a.TextGenerator.Provider())
}

// Close releases storage. In-flight report goroutines are not awaited.
func (a *App) Close() error {
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}
	return nil
}
