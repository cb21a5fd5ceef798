// Package models defines data structures for navfolio
package models

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidHolding marks a holding that violates the units/price/date invariants.
var ErrInvalidHolding = errors.New("invalid holding")

// Holding is a position in one mutual-fund scheme.
// SchemeName, Category and FundHouse are metadata injected from the fund catalog.
type Holding struct {
	SchemeCode string    `json:"scheme_code"`
	SchemeName string    `json:"scheme_name,omitempty"`
	Category   string    `json:"category,omitempty"`
	FundHouse  string    `json:"fund_house,omitempty"`
	Units      float64   `json:"units"`
	BuyPrice   float64   `json:"buy_price"`
	BuyDate    time.Time `json:"buy_date"`
}

// DisplayName returns the scheme name, falling back to the scheme code.
func (h Holding) DisplayName() string {
	if h.SchemeName != "" {
		return h.SchemeName
	}
	return h.SchemeCode
}

// Investment is units × buy price.
func (h Holding) Investment() float64 {
	return h.Units * h.BuyPrice
}

// Validate checks units > 0, buyPrice > 0 and buyDate ≤ now.
// The returned error wraps ErrInvalidHolding.
func (h Holding) Validate(now time.Time) error {
	switch {
	case h.SchemeCode == "":
		return fmt.Errorf("%w: scheme code is required", ErrInvalidHolding)
	case !(h.Units > 0) || math.IsInf(h.Units, 0):
		return fmt.Errorf("%w: units must be positive for scheme %s", ErrInvalidHolding, h.SchemeCode)
	case !(h.BuyPrice > 0) || math.IsInf(h.BuyPrice, 0):
		return fmt.Errorf("%w: buy price must be positive for scheme %s", ErrInvalidHolding, h.SchemeCode)
	case h.BuyDate.IsZero():
		return fmt.Errorf("%w: buy date is required for scheme %s", ErrInvalidHolding, h.SchemeCode)
	case h.BuyDate.After(now):
		return fmt.Errorf("%w: buy date %s is in the future for scheme %s",
			ErrInvalidHolding, h.BuyDate.Format("2006-01-02"), h.SchemeCode)
	}
	return nil
}

// ValuedHolding is a Holding priced at its current NAV.
type ValuedHolding struct {
	Holding
	CurrentNav       float64   `json:"current_nav"`
	NavDate          time.Time `json:"nav_date"` // zero when priced at buy price
	InvestmentValue  float64   `json:"investment_value"`
	CurrentValue     float64   `json:"current_value"`
	Profit           float64   `json:"profit"`
	ReturnPercentage float64   `json:"return_percentage"`
}

// PortfolioHoldings is the input to an analysis run.
type PortfolioHoldings struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Holdings []Holding `json:"holdings"`
}

// NavPoint is a single dated NAV observation.
type NavPoint struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// LatestNav is the most recent published NAV for a scheme.
type LatestNav struct {
	NAV  float64   `json:"nav"`
	Date time.Time `json:"date"`
}

// CashFlow is a dated amount; negative values are money invested.
type CashFlow struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

// NormalizeNavSeries returns a copy of points ordered most-recent-first with
// non-positive or non-finite NAVs removed. When a calendar date appears more than
// once the first occurrence in the input order wins.
func NormalizeNavSeries(points []NavPoint) []NavPoint {
	seen := make(map[string]struct{}, len(points))
	out := make([]NavPoint, 0, len(points))
	for _, p := range points {
		if !(p.NAV > 0) || math.IsInf(p.NAV, 0) || p.Date.IsZero() {
			continue
		}
		key := p.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
