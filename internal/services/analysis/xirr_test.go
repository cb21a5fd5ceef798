package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/bobmcallan/navfolio/internal/models"
)

func TestXIRR_OneYearTenPercent(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -100},
		{Date: date(2024, 1, 1), Amount: 110},
	}

	xirr := XIRR(flows)

	if !approxEqual(xirr, 10.0, 0.1) {
		t.Errorf("XIRR = %.2f%%, want ~10%% for -100 then 110 a year later", xirr)
	}
}

func TestXIRR_ShortPeriodAnnualises(t *testing.T) {
	// 5% over half a year annualises to ~10.3%
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -10000},
		{Date: date(2023, 7, 2), Amount: 10500},
	}

	xirr := XIRR(flows)

	if xirr < 9 || xirr > 12 {
		t.Errorf("XIRR = %.2f%%, want ~10.3%% for 6-month 5%% gain", xirr)
	}
}

func TestXIRR_Loss(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -1000},
		{Date: date(2024, 1, 1), Amount: 800},
	}

	xirr := XIRR(flows)

	if !approxEqual(xirr, -20.0, 0.01) {
		t.Errorf("XIRR = %.2f%%, want -20%%", xirr)
	}
}

func TestXIRR_OrderIndependent(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2024, 1, 1), Amount: 110},
		{Date: date(2023, 1, 1), Amount: -100},
	}

	xirr := XIRR(flows)

	if !approxEqual(xirr, 10.0, 0.1) {
		t.Errorf("XIRR = %.2f%%, want ~10%% regardless of flow order", xirr)
	}
}

func TestXIRR_MultipleContributions(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -1000},
		{Date: date(2023, 7, 1), Amount: -1000},
		{Date: date(2024, 1, 1), Amount: 2200},
	}

	xirr := XIRR(flows)

	if xirr < 10 || xirr > 17 {
		t.Errorf("XIRR = %.2f%%, want between 10%% and 17%%", xirr)
	}

	// the rate must zero the NPV up to rounding of the percentage
	rate := xirr / 100
	years := yearFractions(flows)
	if v := npv(flows, years, rate); math.Abs(v) > 1 {
		t.Errorf("NPV at %.4f = %.4f, want ~0", rate, v)
	}
}

func TestXIRR_FewerThanTwoFlows(t *testing.T) {
	if got := XIRR(nil); got != 0 {
		t.Errorf("XIRR(nil) = %v, want 0", got)
	}
	one := []models.CashFlow{{Date: date(2023, 1, 1), Amount: -100}}
	if got := XIRR(one); got != 0 {
		t.Errorf("XIRR(single flow) = %v, want 0", got)
	}
}

func TestXIRR_NoSignChange(t *testing.T) {
	allOut := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -100},
		{Date: date(2024, 1, 1), Amount: -50},
	}
	if got := XIRR(allOut); got != 0 {
		t.Errorf("XIRR(all outflows) = %v, want 0", got)
	}

	allIn := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: 100},
		{Date: date(2024, 1, 1), Amount: 50},
	}
	if got := XIRR(allIn); got != 0 {
		t.Errorf("XIRR(all inflows) = %v, want 0", got)
	}

	// a zero terminal value is not an inflow
	wipedOut := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -100},
		{Date: date(2024, 1, 1), Amount: 0},
	}
	if got := XIRR(wipedOut); got != 0 {
		t.Errorf("XIRR(zero terminal) = %v, want 0", got)
	}
}

func TestXIRR_UnsolvableReturnsZero(t *testing.T) {
	// 10% in one day has no root inside the search bracket
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -100},
		{Date: date(2023, 1, 2), Amount: 110},
	}

	got := XIRR(flows)

	if math.IsNaN(got) || math.IsInf(got, 0) {
		t.Fatalf("XIRR = %v, want a finite value", got)
	}
	if got != 0 {
		t.Errorf("XIRR = %v, want 0 when no finite rate is found", got)
	}
}

func TestBisectXIRR(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: -100},
		{Date: date(2024, 1, 1), Amount: 110},
	}

	rate, err := bisectXIRR(flows, yearFractions(flows))
	if err != nil {
		t.Fatalf("bisectXIRR: %v", err)
	}
	if !approxEqual(rate, 0.10, 1e-4) {
		t.Errorf("rate = %.6f, want 0.10", rate)
	}
}

func TestBisectXIRR_NoRoot(t *testing.T) {
	flows := []models.CashFlow{
		{Date: date(2023, 1, 1), Amount: 100},
		{Date: date(2024, 1, 1), Amount: 110},
	}

	_, err := bisectXIRR(flows, yearFractions(flows))
	if !errors.Is(err, ErrNoRoot) {
		t.Errorf("err = %v, want ErrNoRoot", err)
	}
}
