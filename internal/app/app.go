// Package app wires configuration, storage, clients and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/navfolio/internal/clients/gemini"
	"github.com/bobmcallan/navfolio/internal/clients/mfapi"
	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/services/analysis"
	"github.com/bobmcallan/navfolio/internal/services/fund"
	"github.com/bobmcallan/navfolio/internal/services/portfolio"
	"github.com/bobmcallan/navfolio/internal/storage"
)

// App holds all initialized services and clients.
// It is the shared core used by both cmd/navfolio-server and cmd/navfolio.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	NavClient        interfaces.FundCatalog
	CommentaryClient interfaces.CommentaryClient
	AnalysisService  interfaces.AnalysisService
	PortfolioService interfaces.PortfolioService
	FundService      interfaces.FundService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath returns configPath, else NAVFOLIO_CONFIG, else navfolio.toml
// beside the binary, else config/navfolio.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("NAVFOLIO_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "navfolio.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/navfolio.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes the application.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewAppWithConfig(config)
}

// NewAppWithConfig initializes storage, clients and services from a loaded config.
func NewAppWithConfig(config *common.Config) (*App, error) {
	startupStart := time.Now()
	logger := common.NewLoggerFromConfig(config.Logging)

	if config.IsProduction() {
		if missing := config.ValidateRequired(); len(missing) > 0 {
			return nil, fmt.Errorf("missing required production settings: %v", missing)
		}
	}

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	navClient := mfapi.NewClient(
		mfapi.WithBaseURL(config.Clients.MFAPI.BaseURL),
		mfapi.WithLogger(logger),
		mfapi.WithRateLimit(config.Clients.MFAPI.RateLimit),
		mfapi.WithTimeout(config.Clients.MFAPI.GetTimeout()),
		mfapi.WithCache(config.Clients.MFAPI.CacheSize, config.Clients.MFAPI.GetCacheTTL()),
	)

	analysisOpts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMaxConcurrency(config.Analysis.MaxConcurrency),
		analysis.WithProviderTimeout(config.Analysis.GetProviderTimeout()),
		analysis.WithLookbackDays(config.Analysis.LookbackDays),
	}

	var commentary interfaces.CommentaryClient
	if config.Clients.Gemini.APIKey != "" {
		geminiClient, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			commentary = geminiClient
			analysisOpts = append(analysisOpts, analysis.WithCommentary(geminiClient))
		}
	} else {
		logger.Debug().Msg("Gemini API key not configured - risk commentary disabled")
	}

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		NavClient:        navClient,
		CommentaryClient: commentary,
		AnalysisService:  analysis.NewService(navClient, analysisOpts...),
		PortfolioService: portfolio.NewService(storageManager, navClient, logger),
		FundService:      fund.NewService(navClient, storageManager.FundStore(), config.Analysis.MaxConcurrency, logger),
		StartupTime:      startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
