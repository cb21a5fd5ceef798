// Package interfaces defines service contracts for navfolio
package interfaces

import (
	"context"

	"github.com/bobmcallan/navfolio/internal/models"
)

// NavProvider supplies NAV data for mutual-fund schemes.
// Implementations must be safe for concurrent use.
type NavProvider interface {
	// GetLatestNav returns the most recent published NAV
	GetLatestNav(ctx context.Context, schemeCode string) (*models.LatestNav, error)

	// GetHistoricalNav returns NAV points within lookbackDays of the most recent
	// point, most recent first. An empty slice is not an error.
	GetHistoricalNav(ctx context.Context, schemeCode string, lookbackDays int) ([]models.NavPoint, error)
}

// FundCatalog extends NavProvider with scheme metadata and search.
type FundCatalog interface {
	NavProvider

	// GetFundDetails returns scheme metadata with its full NAV history
	GetFundDetails(ctx context.Context, schemeCode string) (*models.FundDetails, error)

	// SearchFunds finds schemes whose name matches query
	SearchFunds(ctx context.Context, query string) ([]models.FundSummary, error)
}

// CommentaryClient generates narrative commentary on a risk report.
type CommentaryClient interface {
	RiskCommentary(ctx context.Context, report *models.RiskReport) (string, error)
}
