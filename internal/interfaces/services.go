package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/navfolio/internal/models"
)

// AnalysisService computes performance and risk metrics for a set of holdings
type AnalysisService interface {
	// Analyze values the holdings and computes returns, volatility and diversification
	Analyze(ctx context.Context, p models.PortfolioHoldings, now time.Time) (*models.AnalysisReport, error)

	// AnalyzeRisk runs Analyze and derives a risk level with recommendations
	AnalyzeRisk(ctx context.Context, p models.PortfolioHoldings, now time.Time) (*models.RiskReport, error)
}

// HoldingInput is an unvalidated holding submitted by a user or import file.
// A zero BuyDate means "today".
type HoldingInput struct {
	SchemeCode string    `json:"scheme_code"`
	Units      float64   `json:"units"`
	BuyPrice   float64   `json:"buy_price"`
	BuyDate    time.Time `json:"buy_date"`
}

// PortfolioService manages user portfolios and their holdings
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, userID, name, description string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
	GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, userID, portfolioID string) error

	AddHolding(ctx context.Context, userID, portfolioID string, in HoldingInput) (*models.Portfolio, error)
	RemoveHolding(ctx context.Context, userID, portfolioID, holdingID string) (*models.Portfolio, error)

	// ImportPortfolio parses a CSV or JSON holdings file into a new portfolio
	ImportPortfolio(ctx context.Context, userID, name, filename string, data []byte) (*models.Portfolio, error)

	// ResolveHoldings joins fund metadata onto the stored holdings for analysis
	ResolveHoldings(ctx context.Context, portfolio *models.Portfolio) (models.PortfolioHoldings, error)
}

// FundService exposes the fund catalog
type FundService interface {
	Search(ctx context.Context, query string) ([]models.FundSummary, error)
	History(ctx context.Context, schemeCode, duration string) (*models.FundHistory, error)
	Compare(ctx context.Context, schemeCodes []string, duration string) ([]models.FundHistory, error)
	Chart(ctx context.Context, schemeCode, duration string) ([]byte, error)
}
