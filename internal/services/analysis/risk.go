package analysis

import (
	"fmt"

	"github.com/bobmcallan/navfolio/internal/models"
)

const (
	moderateVolatility = 10.0
	highVolatility     = 20.0

	debtFundVolatility   = 15.0
	sectorConcentration  = 30.0
	assetClassOverweight = 70.0
)

// RiskLevelFor buckets annualized volatility: below 10 is Low, below 20 Moderate.
func RiskLevelFor(volatility float64) models.RiskLevel {
	switch {
	case volatility < moderateVolatility:
		return models.RiskLevelLow
	case volatility < highVolatility:
		return models.RiskLevelModerate
	default:
		return models.RiskLevelHigh
	}
}

// Recommendations suggests rebalancing actions from volatility and concentration.
func Recommendations(vol models.VolatilityReport, div models.DiversificationReport) []string {
	var recs []string

	if vol.Value > debtFundVolatility {
		recs = append(recs, "Consider adding more debt funds to reduce portfolio volatility.")
	}

	if top := div.SectorConcentration.TopSector; top.Percentage > sectorConcentration {
		recs = append(recs, fmt.Sprintf(
			"High concentration (%.2f%%) in %s sector. Consider diversifying.",
			top.Percentage, top.Name))
	}

	if top := div.AssetClassConcentration.TopClass; top.Percentage > assetClassOverweight {
		recs = append(recs, fmt.Sprintf(
			"Portfolio is heavily weighted (%.2f%%) towards %s. Consider balancing with other asset classes.",
			top.Percentage, top.Name))
	}

	if len(recs) == 0 {
		recs = append(recs, "Your portfolio has a good risk-return balance. Continue monitoring performance.")
	}
	return recs
}

// AssessRisk builds the risk view of a completed analysis.
func AssessRisk(report *models.AnalysisReport) *models.RiskReport {
	return &models.RiskReport{
		PortfolioID:     report.PortfolioID,
		Volatility:      report.Volatility,
		Diversification: report.Diversification,
		RiskLevel:       RiskLevelFor(report.Volatility.Value),
		Recommendations: Recommendations(report.Volatility, report.Diversification),
		GeneratedAt:     report.GeneratedAt,
	}
}
