// Package mfapi provides a client for the mfapi.in mutual fund NAV API
package mfapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

const (
	DefaultBaseURL   = "https://api.mfapi.in"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
	DefaultCacheTTL  = time.Hour
	DefaultCacheSize = 512

	navDateLayout = "02-01-2006"
)

var (
	// ErrSchemeNotFound is returned when the API has no metadata for a scheme code.
	// It wraps interfaces.ErrNotFound.
	ErrSchemeNotFound = fmt.Errorf("mfapi: scheme %w", interfaces.ErrNotFound)

	// ErrNoNavData is returned when a scheme has no usable NAV points.
	ErrNoNavData = errors.New("mfapi: no NAV data")
)

// flexString handles JSON values that may be either a number or a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into string", string(data))
}

type schemeResponse struct {
	Meta struct {
		FundHouse      string     `json:"fund_house"`
		SchemeType     string     `json:"scheme_type"`
		SchemeCategory string     `json:"scheme_category"`
		SchemeCode     flexString `json:"scheme_code"`
		SchemeName     string     `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		NAV  string `json:"nav"`
	} `json:"data"`
	Status string `json:"status"`
}

type searchHit struct {
	SchemeCode flexString `json:"schemeCode"`
	SchemeName string     `json:"schemeName"`
}

// Client implements the FundCatalog interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	cache      *expirable.LRU[string, *models.FundDetails]
	cacheSize  int
	cacheTTL   time.Duration
	group      singleflight.Group
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithCache sets the scheme cache size and entry lifetime. A size of 0 keeps the default.
func WithCache(size int, ttl time.Duration) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.cacheSize = size
		}
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	}
}

// NewClient creates a new mfapi client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:    common.NewSilentLogger(),
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.cache = expirable.NewLRU[string, *models.FundDetails](c.cacheSize, nil, c.cacheTTL)

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mfapi error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", reqURL).Msg("mfapi request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// scheme returns cached details for a scheme, fetching at most once concurrently.
func (c *Client) scheme(ctx context.Context, schemeCode string) (*models.FundDetails, error) {
	schemeCode = strings.TrimSpace(schemeCode)
	if schemeCode == "" {
		return nil, ErrSchemeNotFound
	}

	if details, ok := c.cache.Get(schemeCode); ok {
		return details, nil
	}

	// The shared fetch outlives any single caller; each caller waits on its own ctx.
	ch := c.group.DoChan(schemeCode, func() (interface{}, error) {
		// a flight that finished since the first lookup has filled the cache
		if details, ok := c.cache.Get(schemeCode); ok {
			return details, nil
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flightTimeout())
		defer cancel()

		var resp schemeResponse
		if err := c.get(fctx, "/mf/"+url.PathEscape(schemeCode), nil, &resp); err != nil {
			return nil, err
		}
		details, err := parseScheme(schemeCode, &resp)
		if err != nil {
			return nil, err
		}
		c.cache.Add(schemeCode, details)
		return details, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.FundDetails), nil
	}
}

// flightTimeout bounds a shared fetch, including its rate limit wait.
func (c *Client) flightTimeout() time.Duration {
	if c.httpClient.Timeout > 0 {
		return c.httpClient.Timeout
	}
	return DefaultTimeout
}

func parseScheme(schemeCode string, resp *schemeResponse) (*models.FundDetails, error) {
	if resp.Meta.SchemeName == "" {
		return nil, fmt.Errorf("%w: %s", ErrSchemeNotFound, schemeCode)
	}

	points := make([]models.NavPoint, 0, len(resp.Data))
	for _, d := range resp.Data {
		date, err := time.Parse(navDateLayout, strings.TrimSpace(d.Date))
		if err != nil {
			continue
		}
		nav, err := strconv.ParseFloat(strings.TrimSpace(d.NAV), 64)
		if err != nil {
			continue
		}
		points = append(points, models.NavPoint{Date: date, NAV: nav})
	}
	points = models.NormalizeNavSeries(points)

	meta := models.FundMeta{
		SchemeCode: schemeCode,
		SchemeName: strings.TrimSpace(resp.Meta.SchemeName),
		Category:   strings.TrimSpace(resp.Meta.SchemeCategory),
		FundHouse:  strings.TrimSpace(resp.Meta.FundHouse),
		SchemeType: strings.TrimSpace(resp.Meta.SchemeType),
		UpdatedAt:  time.Now().UTC(),
	}
	if len(points) > 0 {
		meta.LatestNav = points[0].NAV
		meta.LatestNavDate = points[0].Date
	}

	return &models.FundDetails{Meta: meta, History: points}, nil
}

// GetLatestNav returns the most recent NAV for a scheme
func (c *Client) GetLatestNav(ctx context.Context, schemeCode string) (*models.LatestNav, error) {
	details, err := c.scheme(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	if len(details.History) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoNavData, schemeCode)
	}
	latest := details.History[0]
	return &models.LatestNav{NAV: latest.NAV, Date: latest.Date}, nil
}

// GetHistoricalNav returns NAV points dated within lookbackDays of the most
// recent point, most recent first. lookbackDays ≤ 0 returns the full history.
func (c *Client) GetHistoricalNav(ctx context.Context, schemeCode string, lookbackDays int) ([]models.NavPoint, error) {
	details, err := c.scheme(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	if len(details.History) == 0 {
		return []models.NavPoint{}, nil
	}
	if lookbackDays <= 0 {
		return append([]models.NavPoint(nil), details.History...), nil
	}

	cutoff := details.History[0].Date.AddDate(0, 0, -lookbackDays)
	out := make([]models.NavPoint, 0, len(details.History))
	for _, p := range details.History {
		if p.Date.Before(cutoff) {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

// GetFundDetails returns scheme metadata and its full NAV history
func (c *Client) GetFundDetails(ctx context.Context, schemeCode string) (*models.FundDetails, error) {
	details, err := c.scheme(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	return &models.FundDetails{
		Meta:    details.Meta,
		History: append([]models.NavPoint(nil), details.History...),
	}, nil
}

// SearchFunds finds schemes by name
func (c *Client) SearchFunds(ctx context.Context, query string) ([]models.FundSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.FundSummary{}, nil
	}

	var hits []searchHit
	if err := c.get(ctx, "/mf/search", url.Values{"q": {query}}, &hits); err != nil {
		return nil, err
	}

	out := make([]models.FundSummary, 0, len(hits))
	for _, h := range hits {
		if h.SchemeCode == "" {
			continue
		}
		out = append(out, models.FundSummary{
			SchemeCode: string(h.SchemeCode),
			SchemeName: h.SchemeName,
		})
	}
	return out, nil
}

// Ensure Client implements FundCatalog
var _ interfaces.FundCatalog = (*Client)(nil)
