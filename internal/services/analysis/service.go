package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

// Service implements AnalysisService
type Service struct {
	fetcher      *navFetcher
	volatility   *VolatilityEstimator
	commentary   interfaces.CommentaryClient
	lookbackDays int
	logger       *common.Logger
}

// NewService creates a new analysis service backed by a NAV provider
func NewService(provider interfaces.NavProvider, opts ...Option) *Service {
	s := newSettings(opts)
	fetcher := newNavFetcher(provider, s)
	return &Service{
		fetcher:      fetcher,
		volatility:   &VolatilityEstimator{fetcher: fetcher, logger: s.logger},
		commentary:   s.commentary,
		lookbackDays: s.lookbackDays,
		logger:       s.logger,
	}
}

// Analyze values the portfolio at the latest NAVs and computes absolute
// return, XIRR, CAGR, volatility and diversification. Holdings that break the
// units/price/date invariants are rejected before any NAV is fetched.
func (s *Service) Analyze(ctx context.Context, p models.PortfolioHoldings, now time.Time) (*models.AnalysisReport, error) {
	for _, h := range p.Holdings {
		if err := h.Validate(now); err != nil {
			return nil, fmt.Errorf("portfolio %s: %w", p.ID, err)
		}
	}

	start := time.Now()

	// Refresh NAVs; failures fall back to buy price
	codes := uniqueSchemeCodes(p.Holdings)
	latest := s.fetcher.latest(ctx, codes)
	navs := make(map[string]*models.LatestNav, len(latest))
	for code, res := range latest {
		if res.err != nil || res.nav == nil {
			s.logger.Warn().
				Str("scheme_code", code).
				Err(res.err).
				Msg("Latest NAV unavailable, valuing at buy price")
			continue
		}
		navs[code] = res.nav
	}

	valued := ValueHoldings(p.Holdings, navs)
	investment, current := Totals(valued)
	flows := BuildCashFlows(valued, current, now)

	report := &models.AnalysisReport{
		PortfolioID:     p.ID,
		PortfolioName:   p.Name,
		TotalInvestment: investment,
		CurrentValue:    current,
		AbsoluteReturn:  AbsoluteReturn(investment, current),
		XIRR:            XIRR(flows),
		CAGR:            WeightedCAGR(valued, now),
		Volatility:      s.volatility.Estimate(ctx, p.Holdings, s.lookbackDays),
		Diversification: Diversification(valued),
		Holdings:        valued,
		GeneratedAt:     now,
	}

	s.logger.Info().
		Str("portfolio_id", p.ID).
		Int("holdings", len(p.Holdings)).
		Int("priced", len(navs)).
		Float64("xirr", report.XIRR).
		Float64("volatility", report.Volatility.Value).
		Dur("elapsed", time.Since(start)).
		Msg("Portfolio analysed")

	return report, nil
}

// AnalyzeRisk runs Analyze and derives a risk level and recommendations.
// Commentary is attached when a commentary client is configured; its failure
// leaves the report without commentary.
func (s *Service) AnalyzeRisk(ctx context.Context, p models.PortfolioHoldings, now time.Time) (*models.RiskReport, error) {
	report, err := s.Analyze(ctx, p, now)
	if err != nil {
		return nil, err
	}

	risk := AssessRisk(report)

	if s.commentary != nil {
		text, err := s.commentary.RiskCommentary(ctx, risk)
		if err != nil {
			s.logger.Warn().Err(err).Str("portfolio_id", p.ID).Msg("Risk commentary failed")
		} else {
			risk.Commentary = text
		}
	}

	return risk, nil
}

var _ interfaces.AnalysisService = (*Service)(nil)
