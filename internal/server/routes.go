package server

import (
	"net/http"

	"github.com/bobmcallan/navfolio/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Auth
	mux.HandleFunc("/api/auth/register", s.handleAuthRegister)
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)
	mux.HandleFunc("/api/auth/me", s.handleAuthMe)

	// Portfolios
	mux.HandleFunc("/api/portfolios/upload", s.handlePortfolioUpload)
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolioRoot)

	// Analysis
	mux.HandleFunc("/api/analyze/portfolio/", s.handleAnalyzePortfolio)
	mux.HandleFunc("/api/analyze/risks/", s.handleAnalyzeRisks)

	// Mutual funds
	mux.HandleFunc("/api/mutual-funds/search", s.handleFundSearch)
	mux.HandleFunc("/api/mutual-funds/compare", s.handleFundCompare)
	mux.HandleFunc("/api/mutual-funds/", s.routeMutualFunds)
}

// routePortfolios dispatches /api/portfolios/{id}[/holdings[/{hid}]].
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r.URL.Path, "/api/portfolios/")
	switch {
	case len(parts) == 0:
		s.handlePortfolioRoot(w, r)
	case len(parts) == 1:
		s.handlePortfolio(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "holdings":
		s.handleHoldingAdd(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "holdings":
		s.handleHoldingRemove(w, r, parts[0], parts[2])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// routeMutualFunds dispatches /api/mutual-funds/{code}[/chart].
func (s *Server) routeMutualFunds(w http.ResponseWriter, r *http.Request) {
	parts := pathSegments(r.URL.Path, "/api/mutual-funds/")
	switch {
	case len(parts) == 1:
		s.handleFundDetails(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "chart":
		s.handleFundChart(w, r, parts[0])
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.VersionInfo())
}
