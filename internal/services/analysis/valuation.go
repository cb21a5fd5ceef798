// Package analysis computes performance and risk metrics for mutual-fund holdings.
package analysis

import (
	"math"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/models"
)

// ValueHolding prices a holding at currentNav. A non-positive or non-finite
// currentNav means no live NAV is available and the holding is valued at its
// buy price, so it shows zero return.
func ValueHolding(h models.Holding, currentNav float64) models.ValuedHolding {
	nav := currentNav
	if !(nav > 0) || math.IsInf(nav, 0) {
		nav = h.BuyPrice
	}

	investment := h.Units * h.BuyPrice
	current := h.Units * nav

	returnPct := 0.0
	if investment != 0 {
		returnPct = common.Round2((current/investment - 1) * 100)
	}

	return models.ValuedHolding{
		Holding:          h,
		CurrentNav:       nav,
		InvestmentValue:  investment,
		CurrentValue:     current,
		Profit:           current - investment,
		ReturnPercentage: returnPct,
	}
}

// ValueHoldings values each holding against navs keyed by scheme code.
// Schemes missing from navs fall back to their buy price.
func ValueHoldings(holdings []models.Holding, navs map[string]*models.LatestNav) []models.ValuedHolding {
	valued := make([]models.ValuedHolding, 0, len(holdings))
	for _, h := range holdings {
		latest := navs[h.SchemeCode]
		if latest == nil {
			valued = append(valued, ValueHolding(h, 0))
			continue
		}
		vh := ValueHolding(h, latest.NAV)
		if latest.NAV > 0 {
			vh.NavDate = latest.Date
		}
		valued = append(valued, vh)
	}
	return valued
}

// Totals sums invested and current value across valued holdings.
func Totals(valued []models.ValuedHolding) (investment, current float64) {
	for _, vh := range valued {
		investment += vh.InvestmentValue
		current += vh.CurrentValue
	}
	return investment, current
}

// AbsoluteReturn is the percentage gain of current over invested value,
// 0 when nothing was invested.
func AbsoluteReturn(investment, current float64) float64 {
	if investment == 0 {
		return 0
	}
	return common.Round2((current/investment - 1) * 100)
}
