package models

import "time"

// AnalysisReport is the result of analysing one portfolio.
// Percentages are percent values rounded to two decimals.
type AnalysisReport struct {
	PortfolioID     string                `json:"portfolio_id"`
	PortfolioName   string                `json:"portfolio_name,omitempty"`
	TotalInvestment float64               `json:"total_investment"`
	CurrentValue    float64               `json:"current_value"`
	AbsoluteReturn  float64               `json:"absolute_return"`
	XIRR            float64               `json:"xirr"`
	CAGR            float64               `json:"cagr"`
	Volatility      VolatilityReport      `json:"volatility"`
	Diversification DiversificationReport `json:"diversification"`
	Holdings        []ValuedHolding       `json:"holdings"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// VolatilityReport holds the investment-weighted portfolio volatility and the
// per-fund figures it was built from, highest first.
type VolatilityReport struct {
	Value            float64          `json:"value"`
	FundVolatilities []FundVolatility `json:"fund_volatilities"`
}

// FundVolatility is the annualized volatility of one scheme.
type FundVolatility struct {
	SchemeCode string  `json:"scheme_code"`
	Name       string  `json:"name"`
	Volatility float64 `json:"volatility"`
}

// DiversificationReport describes concentration by sector, asset class and holding.
type DiversificationReport struct {
	SectorConcentration     SectorConcentration     `json:"sector_concentration"`
	AssetClassConcentration AssetClassConcentration `json:"asset_class_concentration"`
	TopHoldings             []TopHolding            `json:"top_holdings"`
}

// SectorConcentration groups current value by fund category.
type SectorConcentration struct {
	TopSector GroupShare        `json:"top_sector"`
	Sectors   []GroupAllocation `json:"sectors"`
}

// AssetClassConcentration groups current value by asset class.
type AssetClassConcentration struct {
	TopClass GroupShare        `json:"top_class"`
	Classes  []GroupAllocation `json:"classes"`
}

// GroupShare names the largest group and its share of portfolio value.
type GroupShare struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

// GroupAllocation is one group's value and share of portfolio value.
type GroupAllocation struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// TopHolding is a holding ranked by share of portfolio value.
type TopHolding struct {
	SchemeCode string  `json:"scheme_code"`
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// RiskLevel buckets portfolio volatility.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "Low"
	RiskLevelModerate RiskLevel = "Moderate"
	RiskLevelHigh     RiskLevel = "High"
)

// RiskReport is the risk view of an analysis with rebalancing recommendations.
type RiskReport struct {
	PortfolioID     string                `json:"portfolio_id"`
	Volatility      VolatilityReport      `json:"volatility"`
	Diversification DiversificationReport `json:"diversification"`
	RiskLevel       RiskLevel             `json:"risk_level"`
	Recommendations []string              `json:"recommendations"`
	Commentary      string                `json:"commentary,omitempty"`
	GeneratedAt     time.Time             `json:"generated_at"`
}
