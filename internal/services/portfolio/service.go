// Package portfolio provides portfolio management services
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/importer"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

// DefaultImportName names portfolios created from an upload without a name.
const DefaultImportName = "Imported Portfolio"

var (
	// ErrUnknownScheme is returned when a scheme code has no catalog entry.
	ErrUnknownScheme = errors.New("unknown scheme code")

	// ErrInvalidPortfolio is returned for a portfolio without a name.
	ErrInvalidPortfolio = errors.New("invalid portfolio")

	// ErrEmptyImport is returned when an uploaded file yields no usable holdings.
	ErrEmptyImport = errors.New("no valid holdings found in file")
)

// Service implements PortfolioService
type Service struct {
	storage interfaces.StorageManager
	catalog interfaces.FundCatalog
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new portfolio service
func NewService(storage interfaces.StorageManager, catalog interfaces.FundCatalog, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		storage: storage,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// CreatePortfolio creates an empty portfolio owned by userID
func (s *Service) CreatePortfolio(ctx context.Context, userID, name, description string) (*models.Portfolio, error) {
	p, err := s.newPortfolio(userID, name, description, []models.StoredHolding{})
	if err != nil {
		return nil, err
	}
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("portfolio_id", p.ID).Str("name", p.Name).Msg("Portfolio created")
	return p, nil
}

func (s *Service) newPortfolio(userID, name, description string, holdings []models.StoredHolding) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPortfolio)
	}

	now := s.now().UTC()
	return &models.Portfolio{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Holdings:    holdings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *Service) ListPortfolios(ctx context.Context, userID string) ([]*models.Portfolio, error) {
	list, err := s.storage.PortfolioStore().ListPortfolios(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	if list == nil {
		list = []*models.Portfolio{}
	}
	return list, nil
}

func (s *Service) GetPortfolio(ctx context.Context, userID, portfolioID string) (*models.Portfolio, error) {
	return s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID)
}

func (s *Service) DeletePortfolio(ctx context.Context, userID, portfolioID string) error {
	if err := s.storage.PortfolioStore().DeletePortfolio(ctx, userID, portfolioID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("portfolio_id", portfolioID).Msg("Portfolio deleted")
	return nil
}

// AddHolding validates the input, resolves the scheme's metadata and appends
// the holding to the portfolio.
func (s *Service) AddHolding(ctx context.Context, userID, portfolioID string, in interfaces.HoldingInput) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	h, err := s.prepareHolding(ctx, in)
	if err != nil {
		return nil, err
	}

	p.Holdings = append(p.Holdings, h)
	p.UpdatedAt = s.now().UTC()
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("portfolio_id", portfolioID).
		Str("scheme_code", h.SchemeCode).
		Float64("units", h.Units).
		Msg("Holding added")
	return p, nil
}

// prepareHolding applies the boundary invariants and makes sure the scheme is known.
func (s *Service) prepareHolding(ctx context.Context, in interfaces.HoldingInput) (models.StoredHolding, error) {
	now := s.now().UTC()
	code := strings.TrimSpace(in.SchemeCode)

	buyDate := in.BuyDate
	if buyDate.IsZero() {
		buyDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	candidate := models.Holding{SchemeCode: code, Units: in.Units, BuyPrice: in.BuyPrice, BuyDate: buyDate}
	if err := candidate.Validate(now); err != nil {
		return models.StoredHolding{}, err
	}

	if _, err := s.fundMeta(ctx, code); err != nil {
		return models.StoredHolding{}, err
	}

	return models.StoredHolding{
		ID:         uuid.NewString(),
		SchemeCode: code,
		Units:      in.Units,
		BuyPrice:   in.BuyPrice,
		BuyDate:    buyDate,
		AddedAt:    now,
	}, nil
}

// fundMeta returns cached metadata, falling back to the catalog and caching the result.
func (s *Service) fundMeta(ctx context.Context, code string) (*models.FundMeta, error) {
	if meta, err := s.storage.FundStore().GetFund(ctx, code); err == nil {
		return meta, nil
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		s.logger.Warn().Err(err).Str("scheme_code", code).Msg("Fund store lookup failed")
	}

	details, err := s.catalog.GetFundDetails(ctx, code)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownScheme, code)
		}
		return nil, fmt.Errorf("failed to resolve scheme %s: %w", code, err)
	}

	meta := details.Meta
	if err := s.storage.FundStore().SaveFund(ctx, &meta); err != nil {
		s.logger.Warn().Err(err).Str("scheme_code", code).Msg("Failed to cache fund metadata")
	}
	return &meta, nil
}

// RemoveHolding deletes one holding from the portfolio
func (s *Service) RemoveHolding(ctx context.Context, userID, portfolioID, holdingID string) (*models.Portfolio, error) {
	p, err := s.storage.PortfolioStore().GetPortfolio(ctx, userID, portfolioID)
	if err != nil {
		return nil, err
	}

	i := p.FindHolding(holdingID)
	if i < 0 {
		return nil, fmt.Errorf("holding %s: %w", holdingID, interfaces.ErrNotFound)
	}
	p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
	p.UpdatedAt = s.now().UTC()

	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().Str("portfolio_id", portfolioID).Str("holding_id", holdingID).Msg("Holding removed")
	return p, nil
}

// ImportPortfolio parses a CSV or JSON file and creates a portfolio from the
// holdings whose scheme resolves. Rows that fail validation or resolution are skipped.
func (s *Service) ImportPortfolio(ctx context.Context, userID, name, filename string, data []byte) (*models.Portfolio, error) {
	inputs, err := importer.Parse(filename, data)
	if err != nil {
		return nil, err
	}

	holdings := make([]models.StoredHolding, 0, len(inputs))
	skipped := 0
	for _, in := range inputs {
		h, err := s.prepareHolding(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			skipped++
			s.logger.Warn().Err(err).Str("scheme_code", in.SchemeCode).Msg("Skipping imported holding")
			continue
		}
		holdings = append(holdings, h)
	}
	if len(holdings) == 0 {
		return nil, ErrEmptyImport
	}

	if strings.TrimSpace(name) == "" {
		name = DefaultImportName
	}
	// one save with the holdings: a failed import stores nothing
	p, err := s.newPortfolio(userID, name, "Imported from "+filename, holdings)
	if err != nil {
		return nil, err
	}
	if err := s.storage.PortfolioStore().SavePortfolio(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	s.logger.Info().
		Str("portfolio_id", p.ID).
		Int("imported", len(holdings)).
		Int("skipped", skipped).
		Msg("Portfolio imported")
	return p, nil
}

// ResolveHoldings joins fund metadata onto the stored holdings. A scheme whose
// metadata cannot be fetched is analysed with its code only.
func (s *Service) ResolveHoldings(ctx context.Context, portfolio *models.Portfolio) (models.PortfolioHoldings, error) {
	out := models.PortfolioHoldings{
		ID:       portfolio.ID,
		Name:     portfolio.Name,
		Holdings: make([]models.Holding, 0, len(portfolio.Holdings)),
	}

	metas := make(map[string]*models.FundMeta)
	for _, sh := range portfolio.Holdings {
		meta, ok := metas[sh.SchemeCode]
		if !ok {
			m, err := s.fundMeta(ctx, sh.SchemeCode)
			if err != nil {
				if ctx.Err() != nil {
					return models.PortfolioHoldings{}, ctx.Err()
				}
				s.logger.Warn().Err(err).Str("scheme_code", sh.SchemeCode).Msg("Fund metadata unavailable")
			}
			meta = m
			metas[sh.SchemeCode] = m
		}

		h := models.Holding{
			SchemeCode: sh.SchemeCode,
			Units:      sh.Units,
			BuyPrice:   sh.BuyPrice,
			BuyDate:    sh.BuyDate,
		}
		if meta != nil {
			h.SchemeName = meta.SchemeName
			h.Category = meta.Category
			h.FundHouse = meta.FundHouse
		}
		out.Holdings = append(out.Holdings, h)
	}
	return out, nil
}

var _ interfaces.PortfolioService = (*Service)(nil)
