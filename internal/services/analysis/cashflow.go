package analysis

import (
	"time"

	"github.com/bobmcallan/navfolio/internal/models"
)

// BuildCashFlows turns valued holdings into an XIRR cash-flow series: one
// outflow of the invested amount per holding at its buy date, then a single
// inflow of currentValue at now. Flows are neither sorted nor merged.
func BuildCashFlows(valued []models.ValuedHolding, currentValue float64, now time.Time) []models.CashFlow {
	flows := make([]models.CashFlow, 0, len(valued)+1)
	for _, vh := range valued {
		flows = append(flows, models.CashFlow{
			Date:   vh.BuyDate,
			Amount: -(vh.Units * vh.BuyPrice),
		})
	}
	flows = append(flows, models.CashFlow{Date: now, Amount: currentValue})
	return flows
}
