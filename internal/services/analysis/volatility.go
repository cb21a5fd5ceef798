package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

const (
	// MinHistoryPoints is the fewest NAV points a fund needs to be included.
	MinHistoryPoints = 31

	tradingDaysPerYear = 252
)

// VolatilityEstimator computes annualized volatility from NAV history.
type VolatilityEstimator struct {
	fetcher *navFetcher
	logger  *common.Logger
}

// NewVolatilityEstimator creates an estimator reading history from provider
func NewVolatilityEstimator(provider interfaces.NavProvider, opts ...Option) *VolatilityEstimator {
	s := newSettings(opts)
	return &VolatilityEstimator{
		fetcher: newNavFetcher(provider, s),
		logger:  s.logger,
	}
}

// Estimate returns the investment-weighted annualized volatility of the
// holdings together with per-fund figures. Funds whose history cannot be
// fetched, or which have fewer than MinHistoryPoints points, are skipped.
func (e *VolatilityEstimator) Estimate(ctx context.Context, holdings []models.Holding, lookbackDays int) models.VolatilityReport {
	report := models.VolatilityReport{FundVolatilities: []models.FundVolatility{}}
	if len(holdings) == 0 {
		return report
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	codes := uniqueSchemeCodes(holdings)
	histories := e.fetcher.history(ctx, codes, lookbackDays)

	byCode := make(map[string]float64, len(codes))
	for _, code := range codes {
		res := histories[code]
		if res.skipReason == "" {
			vol, err := AnnualizedVolatility(res.points)
			if err == nil {
				byCode[code] = vol
				continue
			}
			res.skipReason = err.Error()
		}
		e.logger.Warn().
			Str("scheme_code", code).
			Str("reason", res.skipReason).
			Msg("Fund excluded from volatility")
	}

	var weighted, totalWeight float64
	named := make(map[string]bool, len(byCode))
	for _, h := range holdings {
		vol, ok := byCode[h.SchemeCode]
		if !ok {
			continue
		}
		weighted += vol * h.Investment()
		totalWeight += h.Investment()

		if !named[h.SchemeCode] {
			named[h.SchemeCode] = true
			report.FundVolatilities = append(report.FundVolatilities, models.FundVolatility{
				SchemeCode: h.SchemeCode,
				Name:       h.DisplayName(),
				Volatility: common.Round2(vol),
			})
		}
	}

	sort.SliceStable(report.FundVolatilities, func(i, j int) bool {
		a, b := report.FundVolatilities[i], report.FundVolatilities[j]
		if a.Volatility != b.Volatility {
			return a.Volatility > b.Volatility
		}
		return a.SchemeCode < b.SchemeCode
	})

	if totalWeight > 0 {
		report.Value = common.Round2(weighted / totalWeight)
	}
	return report
}

// AnnualizedVolatility returns the annualized standard deviation of daily
// returns, in percent. Points are normalized to most-recent-first with
// duplicate dates removed; fewer than MinHistoryPoints is an error.
func AnnualizedVolatility(points []models.NavPoint) (float64, error) {
	series := models.NormalizeNavSeries(points)
	if len(series) < MinHistoryPoints {
		return 0, fmt.Errorf("insufficient history: %d points, need %d", len(series), MinHistoryPoints)
	}

	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		returns = append(returns, (series[i-1].NAV-series[i].NAV)/series[i].NAV)
	}

	_, variance := stat.MeanVariance(returns, nil)
	if math.IsNaN(variance) || variance < 0 {
		return 0, errors.New("invalid variance")
	}

	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100, nil
}
