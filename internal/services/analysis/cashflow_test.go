package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navfolio/internal/models"
)

func TestBuildCashFlows(t *testing.T) {
	now := date(2025, 6, 1)
	valued := []models.ValuedHolding{
		ValueHolding(models.Holding{SchemeCode: "B", Units: 10, BuyPrice: 30, BuyDate: date(2024, 3, 1)}, 35),
		ValueHolding(models.Holding{SchemeCode: "A", Units: 100, BuyPrice: 50, BuyDate: date(2023, 1, 1)}, 60),
	}

	flows := BuildCashFlows(valued, 6350, now)

	require.Len(t, flows, 3)
	// input order is kept
	assert.Equal(t, date(2024, 3, 1), flows[0].Date)
	assert.Equal(t, -300.0, flows[0].Amount)
	assert.Equal(t, -5000.0, flows[1].Amount)
	assert.Equal(t, now, flows[2].Date)
	assert.Equal(t, 6350.0, flows[2].Amount)
}

func TestBuildCashFlows_NoHoldings(t *testing.T) {
	flows := BuildCashFlows(nil, 0, date(2025, 6, 1))

	require.Len(t, flows, 1)
	assert.Equal(t, 0.0, flows[0].Amount)
	assert.Equal(t, 0.0, XIRR(flows))
}
