package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navfolio/internal/models"
)

func TestAnalyze_SingleHoldingOneYear(t *testing.T) {
	now := date(2025, 6, 1)
	p := newFakeProvider()
	p.latest["119551"] = &models.LatestNav{NAV: 60, Date: date(2025, 5, 30)}
	p.history["119551"] = navSeries(latestDay, zigzagNavs(60, 58, 0.01)...)

	svc := NewService(p)
	report, err := svc.Analyze(context.Background(), models.PortfolioHoldings{
		ID:   "p1",
		Name: "Core",
		Holdings: []models.Holding{{
			SchemeCode: "119551",
			SchemeName: "Axis Bluechip Fund",
			Category:   "Equity Scheme - Large Cap Fund",
			Units:      100,
			BuyPrice:   50,
			BuyDate:    date(2024, 6, 1),
		}},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "p1", report.PortfolioID)
	assert.Equal(t, 5000.0, report.TotalInvestment)
	assert.Equal(t, 6000.0, report.CurrentValue)
	assert.Equal(t, 20.0, report.AbsoluteReturn)
	assert.InDelta(t, 20.0, report.XIRR, 0.1)
	assert.InDelta(t, 20.0, report.CAGR, 0.1)

	require.Len(t, report.Holdings, 1)
	vh := report.Holdings[0]
	assert.Equal(t, 5000.0, vh.InvestmentValue)
	assert.Equal(t, 6000.0, vh.CurrentValue)
	assert.InDelta(t, 1000.0, vh.Profit, 1e-9)
	assert.Equal(t, 20.0, vh.ReturnPercentage)

	require.Len(t, report.Volatility.FundVolatilities, 1)
	assert.Greater(t, report.Volatility.Value, 0.0)

	assert.Equal(t, "Equity Scheme - Large Cap Fund", report.Diversification.SectorConcentration.TopSector.Name)
	assert.InDelta(t, 100.0, report.Diversification.SectorConcentration.TopSector.Percentage, 1e-9)
	assert.Equal(t, "Equity", report.Diversification.AssetClassConcentration.TopClass.Name)
	require.Len(t, report.Diversification.TopHoldings, 1)
	assert.Equal(t, now, report.GeneratedAt)
}

func TestAnalyze_EmptyPortfolio(t *testing.T) {
	p := newFakeProvider()
	svc := NewService(p)

	report, err := svc.Analyze(context.Background(), models.PortfolioHoldings{ID: "empty"}, date(2025, 6, 1))
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.TotalInvestment)
	assert.Equal(t, 0.0, report.CurrentValue)
	assert.Equal(t, 0.0, report.AbsoluteReturn)
	assert.Equal(t, 0.0, report.XIRR)
	assert.Equal(t, 0.0, report.CAGR)
	assert.Equal(t, 0.0, report.Volatility.Value)
	assert.Empty(t, report.Volatility.FundVolatilities)
	assert.Equal(t, models.GroupShare{Name: "N/A"}, report.Diversification.SectorConcentration.TopSector)
	assert.Equal(t, models.GroupShare{Name: "N/A"}, report.Diversification.AssetClassConcentration.TopClass)
	assert.Empty(t, report.Diversification.TopHoldings)
	assert.NotNil(t, report.Holdings)
	assert.Equal(t, 0, p.totalCalls())
}

func TestAnalyze_ProviderDownFallsBackToBuyPrice(t *testing.T) {
	p := newFakeProvider()
	p.errs["A"] = errProviderDown

	svc := NewService(p)
	report, err := svc.Analyze(context.Background(), models.PortfolioHoldings{
		ID:       "p1",
		Holdings: []models.Holding{holding("A", 10, 100)},
	}, date(2025, 6, 1))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, report.TotalInvestment)
	assert.Equal(t, 1000.0, report.CurrentValue)
	assert.Equal(t, 0.0, report.AbsoluteReturn)
	assert.Equal(t, 0.0, report.Holdings[0].ReturnPercentage)
	assert.True(t, report.Holdings[0].NavDate.IsZero())
	assert.Equal(t, 0.0, report.Volatility.Value)
	assert.InDelta(t, 0.0, report.XIRR, 0.01)
}

func TestAnalyze_InvalidHoldingRejected(t *testing.T) {
	p := newFakeProvider()
	svc := NewService(p)
	now := date(2025, 6, 1)

	bad := holding("A", 10, 100)
	bad.BuyDate = now.AddDate(0, 1, 0)

	_, err := svc.Analyze(context.Background(), models.PortfolioHoldings{
		ID:       "p1",
		Holdings: []models.Holding{holding("B", 1, 1), bad},
	}, now)

	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidHolding))
	assert.Equal(t, 0, p.totalCalls())
}

func TestAnalyze_CancelledContextStillReports(t *testing.T) {
	p := newFakeProvider()
	p.latest["A"] = &models.LatestNav{NAV: 120, Date: latestDay}
	p.history["A"] = navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)
	p.delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewService(p).Analyze(ctx, models.PortfolioHoldings{
		ID:       "p1",
		Holdings: []models.Holding{holding("A", 10, 100)},
	}, date(2025, 6, 1))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, report.CurrentValue)
	assert.Empty(t, report.Volatility.FundVolatilities)
}

func TestAnalyzeRisk_WithCommentary(t *testing.T) {
	p := newFakeProvider()
	p.latest["A"] = &models.LatestNav{NAV: 110, Date: latestDay}
	p.history["A"] = navSeries(latestDay, zigzagNavs(40, 100, 0.03)...)

	svc := NewService(p, WithCommentary(&fakeCommentary{text: "Concentrated in one fund."}))
	risk, err := svc.AnalyzeRisk(context.Background(), models.PortfolioHoldings{
		ID:       "p1",
		Holdings: []models.Holding{holding("A", 10, 100)},
	}, date(2025, 6, 1))
	require.NoError(t, err)

	assert.Equal(t, "p1", risk.PortfolioID)
	assert.Equal(t, RiskLevelFor(risk.Volatility.Value), risk.RiskLevel)
	assert.NotEmpty(t, risk.Recommendations)
	assert.Equal(t, "Concentrated in one fund.", risk.Commentary)
}

func TestAnalyzeRisk_CommentaryFailureIgnored(t *testing.T) {
	p := newFakeProvider()
	p.latest["A"] = &models.LatestNav{NAV: 110, Date: latestDay}

	svc := NewService(p, WithCommentary(&fakeCommentary{err: errors.New("quota exceeded")}))
	risk, err := svc.AnalyzeRisk(context.Background(), models.PortfolioHoldings{
		ID:       "p1",
		Holdings: []models.Holding{holding("A", 10, 100)},
	}, date(2025, 6, 1))
	require.NoError(t, err)

	assert.Empty(t, risk.Commentary)
	assert.Equal(t, models.RiskLevelLow, risk.RiskLevel)
}
