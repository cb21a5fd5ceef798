package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// portfolioRecord wraps a portfolio so its own "id" field does not collide
// with the SurrealDB record id.
type portfolioRecord struct {
	PortfolioID string           `json:"portfolio_id"`
	UserID      string           `json:"user_id"`
	Portfolio   models.Portfolio `json:"portfolio"`
}

// PortfolioStore implements interfaces.PortfolioStore.
type PortfolioStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewPortfolioStore(db *surrealdb.DB, logger *common.Logger) *PortfolioStore {
	return &PortfolioStore{
		db:     db,
		logger: logger,
	}
}

func (s *PortfolioStore) GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error) {
	rec, err := surrealdb.Select[portfolioRecord](ctx, s.db, surrealmodels.NewRecordID(tablePortfolio, portfolioID))
	if err != nil {
		return nil, fmt.Errorf("failed to select portfolio: %w", err)
	}
	// Another user's portfolio is reported as absent.
	if rec == nil || rec.PortfolioID == "" || rec.UserID != userID {
		return nil, fmt.Errorf("portfolio %s: %w", portfolioID, interfaces.ErrNotFound)
	}
	p := rec.Portfolio
	return &p, nil
}

func (s *PortfolioStore) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	sql := "SELECT * FROM portfolio WHERE user_id = $user_id ORDER BY portfolio.created_at ASC"
	results, err := surrealdb.Query[[]portfolioRecord](ctx, s.db, sql, map[string]any{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}

	var out []*models.Portfolio
	if results != nil && len(*results) > 0 {
		for i := range (*results)[0].Result {
			out = append(out, &(*results)[0].Result[i].Portfolio)
		}
	}
	return out, nil
}

func (s *PortfolioStore) SavePortfolio(ctx context.Context, portfolio *models.Portfolio) error {
	rec := portfolioRecord{
		PortfolioID: portfolio.ID,
		UserID:      portfolio.UserID,
		Portfolio:   *portfolio,
	}
	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": surrealmodels.NewRecordID(tablePortfolio, portfolio.ID), "record": rec}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]portfolioRecord](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
		s.logger.Debug().Err(err).Int("attempt", attempt).Str("portfolio_id", portfolio.ID).Msg("Retrying portfolio save")
	}
	return fmt.Errorf("failed to save portfolio after retries: %w", lastErr)
}

func (s *PortfolioStore) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	if _, err := s.GetPortfolio(ctx, userID, portfolioID); err != nil {
		return err
	}
	_, err := surrealdb.Delete[portfolioRecord](ctx, s.db, surrealmodels.NewRecordID(tablePortfolio, portfolioID))
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	return nil
}

var _ interfaces.PortfolioStore = (*PortfolioStore)(nil)
