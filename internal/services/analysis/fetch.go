package analysis

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

// latestResult is the outcome of one latest-NAV lookup.
type latestResult struct {
	nav *models.LatestNav
	err error
}

// historyResult is the outcome of one history lookup: either points, or a
// non-empty skipReason when the fund must be left out.
type historyResult struct {
	points     []models.NavPoint
	skipReason string
}

// navFetcher fans provider calls out over unique scheme codes with a bounded
// number of concurrent calls and a timeout per call.
type navFetcher struct {
	provider interfaces.NavProvider
	logger   *common.Logger
	limit    int
	timeout  time.Duration
}

func newNavFetcher(provider interfaces.NavProvider, s settings) *navFetcher {
	return &navFetcher{
		provider: provider,
		logger:   s.logger,
		limit:    s.maxConcurrency,
		timeout:  s.providerTimeout,
	}
}

// fanOut runs fn once per code and blocks until every call has returned.
func (f *navFetcher) fanOut(ctx context.Context, codes []string, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(f.limit)

	for i := range codes {
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()
			fn(callCtx, i)
			return nil
		})
	}

	_ = g.Wait()
}

func (f *navFetcher) latest(ctx context.Context, codes []string) map[string]latestResult {
	results := make([]latestResult, len(codes))

	f.fanOut(ctx, codes, func(ctx context.Context, i int) {
		nav, err := f.provider.GetLatestNav(ctx, codes[i])
		results[i] = latestResult{nav: nav, err: err}
	})

	out := make(map[string]latestResult, len(codes))
	for i, code := range codes {
		out[code] = results[i]
	}
	return out
}

func (f *navFetcher) history(ctx context.Context, codes []string, lookbackDays int) map[string]historyResult {
	results := make([]historyResult, len(codes))

	f.fanOut(ctx, codes, func(ctx context.Context, i int) {
		points, err := f.provider.GetHistoricalNav(ctx, codes[i], lookbackDays)
		if err != nil {
			results[i] = historyResult{skipReason: err.Error()}
			return
		}
		results[i] = historyResult{points: points}
	})

	out := make(map[string]historyResult, len(codes))
	for i, code := range codes {
		out[code] = results[i]
	}
	return out
}

// uniqueSchemeCodes returns scheme codes in first-seen order.
func uniqueSchemeCodes(holdings []models.Holding) []string {
	seen := make(map[string]struct{}, len(holdings))
	codes := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.SchemeCode]; ok {
			continue
		}
		seen[h.SchemeCode] = struct{}{}
		codes = append(codes, h.SchemeCode)
	}
	return codes
}
