package interfaces

import (
	"context"

	"github.com/bobmcallan/navfolio/internal/models"
)

// StorageManager coordinates all stores of one backend
type StorageManager interface {
	UserStore() UserStore
	PortfolioStore() PortfolioStore
	FundStore() FundStore

	Close() error
}

// UserStore manages user accounts.
// Lookups for absent users return an error wrapping ErrNotFound.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// PortfolioStore manages portfolios scoped by owner.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error)
	SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error
	DeletePortfolio(ctx context.Context, userID, portfolioID string) error
}

// FundStore caches scheme metadata.
type FundStore interface {
	GetFund(ctx context.Context, schemeCode string) (*models.FundMeta, error)
	SaveFund(ctx context.Context, fund *models.FundMeta) error
}
