package analysis

import (
	"errors"
	"math"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/models"
)

var (
	// ErrNoRoot is returned when NPV does not change sign over the search bracket.
	ErrNoRoot = errors.New("xirr: npv has no sign change in bracket")

	// ErrDidNotConverge is returned when neither solver reaches tolerance.
	ErrDidNotConverge = errors.New("xirr: solver did not converge")
)

const (
	xirrMaxIter  = 100
	xirrTol      = 1e-6
	xirrMinRate  = -0.999 // (1+r) must stay positive for fractional exponents
	xirrMaxRate  = 100.0
	xirrDayCount = 365.0
)

// XIRR computes the annualized internal rate of return of flows as a
// percentage rounded to two decimals. Years are measured in days/365 from the
// earliest flow. It returns 0 when there are fewer than two flows, when the
// flows do not contain both an outflow and an inflow, or when no finite rate
// can be found.
func XIRR(flows []models.CashFlow) float64 {
	if len(flows) < 2 {
		return 0
	}

	hasNeg, hasPos := false, false
	for _, f := range flows {
		if f.Amount < 0 {
			hasNeg = true
		}
		if f.Amount > 0 {
			hasPos = true
		}
	}
	if !hasNeg || !hasPos {
		return 0
	}

	rate, err := solveXIRR(flows)
	if err != nil || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}

	return common.Round2(rate * 100)
}

// yearFractions converts flow dates to years since the earliest flow.
func yearFractions(flows []models.CashFlow) []float64 {
	base := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(base) {
			base = f.Date
		}
	}

	years := make([]float64, len(flows))
	for i, f := range flows {
		years[i] = f.Date.Sub(base).Hours() / 24 / xirrDayCount
	}
	return years
}

func npv(flows []models.CashFlow, years []float64, rate float64) float64 {
	base := 1 + rate
	if base <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i, f := range flows {
		sum += f.Amount / math.Pow(base, years[i])
	}
	return sum
}

// solveXIRR finds r such that NPV(r) = 0 with Newton-Raphson, falling back
// to bisection. The rate is returned as a decimal (0.12 for 12%).
func solveXIRR(flows []models.CashFlow) (float64, error) {
	years := yearFractions(flows)

	// Start from the simple return
	invested, received := 0.0, 0.0
	for _, f := range flows {
		if f.Amount < 0 {
			invested -= f.Amount
		} else {
			received += f.Amount
		}
	}

	rate := 0.1
	if invested > 0 {
		simple := received/invested - 1
		if simple > -0.9 && simple < 10 {
			rate = simple
		}
	}

	for iter := 0; iter < xirrMaxIter; iter++ {
		base := 1 + rate
		value, deriv := 0.0, 0.0
		for i, f := range flows {
			discount := math.Pow(base, years[i])
			if discount == 0 || math.IsInf(discount, 0) {
				continue
			}
			value += f.Amount / discount
			if years[i] != 0 {
				deriv -= years[i] * f.Amount / (discount * base)
			}
		}

		if math.IsNaN(value) || math.IsInf(value, 0) {
			break
		}
		if math.Abs(value) < xirrTol {
			return rate, nil
		}
		if deriv == 0 || math.IsNaN(deriv) {
			break
		}

		next := rate - value/deriv
		if next < xirrMinRate {
			next = xirrMinRate
		}
		if next > xirrMaxRate {
			next = xirrMaxRate
		}
		rate = next
	}

	return bisectXIRR(flows, years)
}

// bisectXIRR brackets the root starting from [-0.99, 10], widening the upper
// bound for short horizons with large gains, then bisects.
func bisectXIRR(flows []models.CashFlow, years []float64) (float64, error) {
	lo, hi := -0.99, 10.0
	npvLo := npv(flows, years, lo)
	npvHi := npv(flows, years, hi)

	for npvLo*npvHi > 0 && hi < 1e6 {
		hi *= 10
		npvHi = npv(flows, years, hi)
	}

	if math.IsNaN(npvLo) || math.IsNaN(npvHi) || npvLo*npvHi > 0 {
		return math.NaN(), ErrNoRoot
	}

	for iter := 0; iter < xirrMaxIter; iter++ {
		mid := (lo + hi) / 2
		npvMid := npv(flows, years, mid)
		if math.IsNaN(npvMid) {
			return math.NaN(), ErrDidNotConverge
		}
		// stop once the bracket collapses to float precision
		if math.Abs(npvMid) < xirrTol || hi-lo < 1e-12 {
			return mid, nil
		}
		if npvMid*npvLo < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}

	return math.NaN(), ErrDidNotConverge
}
