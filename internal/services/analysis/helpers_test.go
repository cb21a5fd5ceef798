package analysis

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/bobmcallan/navfolio/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// navSeries builds a most-recent-first series ending at latest, one point per day.
func navSeries(latest time.Time, navs ...float64) []models.NavPoint {
	points := make([]models.NavPoint, len(navs))
	for i, nav := range navs {
		points[i] = models.NavPoint{Date: latest.AddDate(0, 0, -i), NAV: nav}
	}
	return points
}

// flatNavs returns n copies of v.
func flatNavs(n int, v float64) []float64 {
	navs := make([]float64, n)
	for i := range navs {
		navs[i] = v
	}
	return navs
}

// zigzagNavs alternates between base and base*(1+amp).
func zigzagNavs(n int, base, amp float64) []float64 {
	navs := make([]float64, n)
	for i := range navs {
		if i%2 == 0 {
			navs[i] = base
		} else {
			navs[i] = base * (1 + amp)
		}
	}
	return navs
}

var errProviderDown = errors.New("provider down")

// fakeProvider is an in-memory NavProvider that records call concurrency.
type fakeProvider struct {
	latest  map[string]*models.LatestNav
	history map[string][]models.NavPoint
	errs    map[string]error
	delay   time.Duration

	mu           sync.Mutex
	inFlight     int
	maxInFlight  int
	latestCalls  map[string]int
	historyCalls map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		latest:       map[string]*models.LatestNav{},
		history:      map[string][]models.NavPoint{},
		errs:         map[string]error{},
		latestCalls:  map[string]int{},
		historyCalls: map[string]int{},
	}
}

func (f *fakeProvider) enter() {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
}

func (f *fakeProvider) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeProvider) wait(ctx context.Context) error {
	if f.delay == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) GetLatestNav(ctx context.Context, code string) (*models.LatestNav, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.latestCalls[code]++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	nav, ok := f.latest[code]
	if !ok {
		return nil, errProviderDown
	}
	return nav, nil
}

func (f *fakeProvider) GetHistoricalNav(ctx context.Context, code string, lookbackDays int) ([]models.NavPoint, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.historyCalls[code]++
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	return f.history[code], nil
}

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.latestCalls {
		n += c
	}
	for _, c := range f.historyCalls {
		n += c
	}
	return n
}

type fakeCommentary struct {
	text string
	err  error
}

func (f *fakeCommentary) RiskCommentary(ctx context.Context, report *models.RiskReport) (string, error) {
	return f.text, f.err
}
