package analysis

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navfolio/internal/models"
)

var latestDay = date(2025, 5, 30)

func holding(code string, units, price float64) models.Holding {
	return models.Holding{
		SchemeCode: code,
		SchemeName: "Fund " + code,
		Units:      units,
		BuyPrice:   price,
		BuyDate:    date(2024, 1, 1),
	}
}

func sampleStdDev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func TestAnnualizedVolatility_Flat(t *testing.T) {
	vol, err := AnnualizedVolatility(navSeries(latestDay, flatNavs(40, 25)...))
	require.NoError(t, err)
	assert.Equal(t, 0.0, vol)
}

func TestAnnualizedVolatility_MatchesSampleStdDev(t *testing.T) {
	navs := []float64{}
	for i := 0; i < 60; i++ {
		navs = append(navs, 100+10*math.Sin(float64(i)/3))
	}
	points := navSeries(latestDay, navs...)

	returns := make([]float64, 0, len(navs)-1)
	for i := 1; i < len(navs); i++ {
		returns = append(returns, (navs[i-1]-navs[i])/navs[i])
	}
	want := sampleStdDev(returns) * math.Sqrt(252) * 100

	got, err := AnnualizedVolatility(points)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestAnnualizedVolatility_OrderAndDuplicatesNormalized(t *testing.T) {
	points := navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)
	want, err := AnnualizedVolatility(points)
	require.NoError(t, err)

	// oldest first, with a duplicated date appended at the end
	reversed := make([]models.NavPoint, 0, len(points)+1)
	for i := len(points) - 1; i >= 0; i-- {
		reversed = append(reversed, points[i])
	}
	dup := points[0]
	dup.NAV = 500
	reversed = append(reversed, dup)

	got, err := AnnualizedVolatility(reversed)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-9)
}

func TestAnnualizedVolatility_InsufficientHistory(t *testing.T) {
	_, err := AnnualizedVolatility(navSeries(latestDay, zigzagNavs(MinHistoryPoints-1, 100, 0.05)...))
	assert.Error(t, err)

	_, err = AnnualizedVolatility(navSeries(latestDay, zigzagNavs(MinHistoryPoints, 100, 0.05)...))
	assert.NoError(t, err)
}

func TestEstimate_ShortHistoryExcluded(t *testing.T) {
	p := newFakeProvider()
	p.history["A"] = navSeries(latestDay, zigzagNavs(60, 100, 0.01)...)
	p.history["B"] = navSeries(latestDay, zigzagNavs(30, 100, 0.10)...)

	withB := NewVolatilityEstimator(p).Estimate(context.Background(),
		[]models.Holding{holding("A", 10, 100), holding("B", 1000, 100)}, 365)
	withoutB := NewVolatilityEstimator(p).Estimate(context.Background(),
		[]models.Holding{holding("A", 10, 100)}, 365)

	require.Len(t, withB.FundVolatilities, 1)
	assert.Equal(t, "A", withB.FundVolatilities[0].SchemeCode)
	assert.Equal(t, withoutB.Value, withB.Value)
	assert.Greater(t, withB.Value, 0.0)
}

func TestEstimate_FlatSeriesIsZero(t *testing.T) {
	p := newFakeProvider()
	p.history["A"] = navSeries(latestDay, flatNavs(50, 42)...)

	report := NewVolatilityEstimator(p).Estimate(context.Background(), []models.Holding{holding("A", 10, 40)}, 365)

	assert.Equal(t, 0.0, report.Value)
	require.Len(t, report.FundVolatilities, 1)
	assert.Equal(t, 0.0, report.FundVolatilities[0].Volatility)
}

func TestEstimate_SortedDescendingAndWeighted(t *testing.T) {
	p := newFakeProvider()
	p.history["LOW"] = navSeries(latestDay, zigzagNavs(40, 100, 0.001)...)
	p.history["MID"] = navSeries(latestDay, zigzagNavs(40, 100, 0.01)...)
	p.history["HIGH"] = navSeries(latestDay, zigzagNavs(40, 100, 0.05)...)

	holdings := []models.Holding{
		holding("MID", 10, 100),  // 1000
		holding("LOW", 30, 100),  // 3000
		holding("HIGH", 10, 100), // 1000
	}

	report := NewVolatilityEstimator(p).Estimate(context.Background(), holdings, 365)

	require.Len(t, report.FundVolatilities, 3)
	assert.Equal(t, "HIGH", report.FundVolatilities[0].SchemeCode)
	assert.Equal(t, "MID", report.FundVolatilities[1].SchemeCode)
	assert.Equal(t, "LOW", report.FundVolatilities[2].SchemeCode)
	for i := 1; i < len(report.FundVolatilities); i++ {
		assert.GreaterOrEqual(t, report.FundVolatilities[i-1].Volatility, report.FundVolatilities[i].Volatility)
	}

	vols := map[string]float64{}
	for _, code := range []string{"LOW", "MID", "HIGH"} {
		v, err := AnnualizedVolatility(p.history[code])
		require.NoError(t, err)
		vols[code] = v
	}
	want := (vols["MID"]*1000 + vols["LOW"]*3000 + vols["HIGH"]*1000) / 5000
	assert.InDelta(t, want, report.Value, 0.01)
}

func TestEstimate_ProviderFailureIsolated(t *testing.T) {
	p := newFakeProvider()
	p.history["A"] = navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)
	p.errs["B"] = errProviderDown

	report := NewVolatilityEstimator(p).Estimate(context.Background(),
		[]models.Holding{holding("A", 10, 100), holding("B", 10, 100)}, 365)

	require.Len(t, report.FundVolatilities, 1)
	assert.Equal(t, "A", report.FundVolatilities[0].SchemeCode)
	assert.Greater(t, report.Value, 0.0)
}

func TestEstimate_PerCallTimeout(t *testing.T) {
	p := newFakeProvider()
	p.history["A"] = navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)
	p.delay = 2 * time.Second

	start := time.Now()
	report := NewVolatilityEstimator(p, WithProviderTimeout(20*time.Millisecond)).
		Estimate(context.Background(), []models.Holding{holding("A", 10, 100)}, 365)

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, report.FundVolatilities)
	assert.Equal(t, 0.0, report.Value)
}

func TestEstimate_BoundedConcurrency(t *testing.T) {
	p := newFakeProvider()
	p.delay = 20 * time.Millisecond

	var holdings []models.Holding
	for _, code := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		p.history[code] = navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)
		holdings = append(holdings, holding(code, 1, 100))
	}

	report := NewVolatilityEstimator(p, WithMaxConcurrency(2)).Estimate(context.Background(), holdings, 365)

	assert.Len(t, report.FundVolatilities, 8)
	assert.LessOrEqual(t, p.maxInFlight, 2)
	assert.Equal(t, 0, p.inFlight)
}

func TestEstimate_DuplicateSchemeFetchedOnce(t *testing.T) {
	p := newFakeProvider()
	p.history["A"] = navSeries(latestDay, zigzagNavs(40, 100, 0.02)...)

	holdings := []models.Holding{holding("A", 10, 100), holding("A", 5, 120)}
	report := NewVolatilityEstimator(p).Estimate(context.Background(), holdings, 365)

	assert.Equal(t, 1, p.historyCalls["A"])
	require.Len(t, report.FundVolatilities, 1)
	assert.InDelta(t, report.FundVolatilities[0].Volatility, report.Value, 0.01)
}

func TestEstimate_NoHoldings(t *testing.T) {
	p := newFakeProvider()
	report := NewVolatilityEstimator(p).Estimate(context.Background(), nil, 365)

	assert.Equal(t, 0.0, report.Value)
	assert.NotNil(t, report.FundVolatilities)
	assert.Empty(t, report.FundVolatilities)
	assert.Equal(t, 0, p.totalCalls())
}
