// Package fund provides fund search, NAV history and comparison services
package fund

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

// SearchLimit caps the number of search hits returned.
const SearchLimit = 10

// DefaultDuration is used when no duration is given.
const DefaultDuration = "1y"

// durationPoints maps a duration label to the number of most recent NAV points shown.
var durationPoints = map[string]int{
	"1m":  30,
	"3m":  90,
	"6m":  180,
	"1y":  365,
	"3y":  1095,
	"5y":  1825,
	"10y": 3650,
}

var (
	// ErrInvalidDuration is returned for a duration label outside 1m..10y.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrCompareNeedsTwo is returned when fewer than two schemes are compared.
	ErrCompareNeedsTwo = errors.New("at least two scheme codes are required for comparison")

	// ErrEmptyQuery is returned for a blank search.
	ErrEmptyQuery = errors.New("search query is required")
)

// Service implements interfaces.FundService
type Service struct {
	catalog        interfaces.FundCatalog
	funds          interfaces.FundStore
	maxConcurrency int
	logger         *common.Logger
}

// NewService creates a fund service. funds may be nil, in which case fetched
// metadata is not cached.
func NewService(catalog interfaces.FundCatalog, funds interfaces.FundStore, maxConcurrency int, logger *common.Logger) *Service {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		catalog:        catalog,
		funds:          funds,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// Search returns at most SearchLimit schemes matching query
func (s *Service) Search(ctx context.Context, query string) ([]models.FundSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	hits, err := s.catalog.SearchFunds(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fund search failed: %w", err)
	}
	if len(hits) > SearchLimit {
		hits = hits[:SearchLimit]
	}
	return hits, nil
}

// ParseDuration returns the number of NAV points for a duration label.
// An empty label selects DefaultDuration.
func ParseDuration(duration string) (string, int, error) {
	d := strings.ToLower(strings.TrimSpace(duration))
	if d == "" {
		d = DefaultDuration
	}
	n, ok := durationPoints[d]
	if !ok {
		return "", 0, fmt.Errorf("%w %q (use 1m, 3m, 6m, 1y, 3y, 5y or 10y)", ErrInvalidDuration, duration)
	}
	return d, n, nil
}

// History returns scheme metadata with the most recent NAV points for the
// duration, oldest first.
func (s *Service) History(ctx context.Context, schemeCode, duration string) (*models.FundHistory, error) {
	label, n, err := ParseDuration(duration)
	if err != nil {
		return nil, err
	}

	details, err := s.catalog.GetFundDetails(ctx, schemeCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %s: %w", schemeCode, err)
	}

	if s.funds != nil {
		meta := details.Meta
		if err := s.funds.SaveFund(ctx, &meta); err != nil {
			s.logger.Warn().Err(err).Str("scheme_code", schemeCode).Msg("Failed to cache fund metadata")
		}
	}

	return &models.FundHistory{
		Meta:     details.Meta,
		Duration: label,
		History:  chronological(details.History, n),
	}, nil
}

// chronological takes the first n points of a most-recent-first series and
// returns them oldest first.
func chronological(points []models.NavPoint, n int) []models.NavPoint {
	if n > len(points) {
		n = len(points)
	}
	out := make([]models.NavPoint, n)
	copy(out, points[:n])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Compare fetches the history of each scheme concurrently. A scheme that fails
// is returned as a placeholder entry carrying the error message.
func (s *Service) Compare(ctx context.Context, schemeCodes []string, duration string) ([]models.FundHistory, error) {
	codes := make([]string, 0, len(schemeCodes))
	seen := make(map[string]bool, len(schemeCodes))
	for _, c := range schemeCodes {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}
	if len(codes) < 2 {
		return nil, ErrCompareNeedsTwo
	}
	label, _, err := ParseDuration(duration)
	if err != nil {
		return nil, err
	}

	results := make([]models.FundHistory, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, code := range codes {
		g.Go(func() error {
			h, err := s.History(gctx, code, duration)
			if err != nil {
				s.logger.Warn().Err(err).Str("scheme_code", code).Msg("Comparison fund unavailable")
				results[i] = models.FundHistory{
					Meta:     models.FundMeta{SchemeCode: code, SchemeName: "Unknown Fund"},
					Duration: label,
					History:  []models.NavPoint{},
					Error:    err.Error(),
				}
				return nil
			}
			results[i] = *h
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Chart renders the scheme's NAV history for the duration as a PNG.
func (s *Service) Chart(ctx context.Context, schemeCode, duration string) ([]byte, error) {
	h, err := s.History(ctx, schemeCode, duration)
	if err != nil {
		return nil, err
	}
	title := h.Meta.SchemeName
	if title == "" {
		title = schemeCode
	}
	return RenderNavChart(fmt.Sprintf("%s (%s)", title, h.Duration), h.History)
}

var _ interfaces.FundService = (*Service)(nil)
