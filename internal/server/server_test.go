package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/navfolio/internal/app"
	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
	"github.com/bobmcallan/navfolio/internal/services/analysis"
	"github.com/bobmcallan/navfolio/internal/services/fund"
	"github.com/bobmcallan/navfolio/internal/services/portfolio"
	"github.com/bobmcallan/navfolio/internal/storage/memory"
)

var navEnd = time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)

type fakeCatalog struct {
	mu    sync.Mutex
	funds map[string]*models.FundDetails
}

// newFakeCatalog serves two schemes with 400 daily points ending at navEnd.
// Axis Bluechip's latest NAV is 150.
func newFakeCatalog() *fakeCatalog {
	c := &fakeCatalog{funds: make(map[string]*models.FundDetails)}
	c.add("120503", "Axis Bluechip Fund", "Equity Scheme - Large Cap Fund", 150)
	c.add("119551", "Aditya Birla Sun Life Banking & PSU Debt Fund", "Debt Scheme - Banking and PSU Fund", 300)
	return c
}

func (c *fakeCatalog) add(code, name, category string, latest float64) {
	history := make([]models.NavPoint, 400)
	for i := range history {
		nav := latest - float64(i)*0.1
		if i%2 == 1 {
			nav -= 0.5
		}
		history[i] = models.NavPoint{Date: navEnd.AddDate(0, 0, -i), NAV: nav}
	}
	c.funds[code] = &models.FundDetails{
		Meta:    models.FundMeta{SchemeCode: code, SchemeName: name, Category: category},
		History: history,
	}
}

func (c *fakeCatalog) GetFundDetails(_ context.Context, code string) (*models.FundDetails, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.funds[code]
	if !ok {
		return nil, fmt.Errorf("scheme %s: %w", code, interfaces.ErrNotFound)
	}
	cp := *d
	cp.History = append([]models.NavPoint(nil), d.History...)
	return &cp, nil
}

func (c *fakeCatalog) GetLatestNav(ctx context.Context, code string) (*models.LatestNav, error) {
	d, err := c.GetFundDetails(ctx, code)
	if err != nil {
		return nil, err
	}
	return &models.LatestNav{NAV: d.History[0].NAV, Date: d.History[0].Date}, nil
}

func (c *fakeCatalog) GetHistoricalNav(ctx context.Context, code string, _ int) ([]models.NavPoint, error) {
	d, err := c.GetFundDetails(ctx, code)
	if err != nil {
		return nil, err
	}
	return d.History, nil
}

func (c *fakeCatalog) SearchFunds(_ context.Context, query string) ([]models.FundSummary, error) {
	return []models.FundSummary{{SchemeCode: "120503", SchemeName: "Axis Bluechip Fund"}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Auth.JWTSecret = "test-secret"

	logger := common.NewSilentLogger()
	store := memory.NewManager()
	catalog := newFakeCatalog()

	a := &app.App{
		Config:           cfg,
		Logger:           logger,
		Storage:          store,
		NavClient:        catalog,
		AnalysisService:  analysis.NewService(catalog, analysis.WithLogger(logger)),
		PortfolioService: portfolio.NewService(store, catalog, logger),
		FundService:      fund.NewService(catalog, store.FundStore(), 2, logger),
		StartupTime:      time.Now(),
	}
	return NewServer(a)
}

// do sends a request through the full middleware stack. body may be nil.
func do(t *testing.T, s *Server, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// register creates a user and returns its token.
func register(t *testing.T, s *Server, username string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createPortfolio creates a portfolio and returns its id.
func createPortfolio(t *testing.T, s *Server, token, name string) string {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/portfolios", map[string]string{"name": name}, bearer(token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)
	return id
}
