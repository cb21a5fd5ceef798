package analysis

import (
	"math"
	"time"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/models"
)

const cagrDayCount = 365.25

// yearsBetween is the holding period in years.
func yearsBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24 / cagrDayCount
}

// WeightedCAGR returns the investment-weighted average of each holding's
// compound annual growth rate, as a percentage rounded to two decimals.
// Holdings with no elapsed holding period are left out entirely.
func WeightedCAGR(valued []models.ValuedHolding, now time.Time) float64 {
	var weighted, totalWeight float64

	for _, vh := range valued {
		years := yearsBetween(vh.BuyDate, now)
		if years <= 0 || vh.BuyPrice <= 0 {
			continue
		}

		cagr := (math.Pow(vh.CurrentNav/vh.BuyPrice, 1/years) - 1) * 100
		if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
			continue
		}

		weighted += cagr * vh.InvestmentValue
		totalWeight += vh.InvestmentValue
	}

	if totalWeight <= 0 {
		return 0
	}
	return common.Round2(weighted / totalWeight)
}
