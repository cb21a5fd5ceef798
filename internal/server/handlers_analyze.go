package server

import (
	"net/http"
	"time"

	"github.com/bobmcallan/navfolio/internal/models"
)

// loadHoldings fetches the caller's portfolio and joins fund metadata onto it.
// It writes the error response and returns false on failure.
func (s *Server) loadHoldings(w http.ResponseWriter, r *http.Request) (models.PortfolioHoldings, bool) {
	uc := requireUser(w, r)
	if uc == nil {
		return models.PortfolioHoldings{}, false
	}

	parts := pathSegments(r.URL.Path, "")
	id := ""
	if len(parts) > 0 {
		id = parts[len(parts)-1]
	}
	if len(parts) != 4 || id == "" {
		WriteError(w, http.StatusBadRequest, "portfolio id is required in path")
		return models.PortfolioHoldings{}, false
	}

	p, err := s.app.PortfolioService.GetPortfolio(r.Context(), uc.UserID, id)
	if err != nil {
		s.writeServiceError(w, err, "Error loading portfolio")
		return models.PortfolioHoldings{}, false
	}

	holdings, err := s.app.PortfolioService.ResolveHoldings(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, err, "Error resolving holdings")
		return models.PortfolioHoldings{}, false
	}
	return holdings, true
}

// handleAnalyzePortfolio handles GET /api/analyze/portfolio/{id}.
func (s *Server) handleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	holdings, ok := s.loadHoldings(w, r)
	if !ok {
		return
	}

	report, err := s.app.AnalysisService.Analyze(r.Context(), holdings, time.Now())
	if err != nil {
		s.writeServiceError(w, err, "Error analyzing portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleAnalyzeRisks handles GET /api/analyze/risks/{id}.
func (s *Server) handleAnalyzeRisks(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	holdings, ok := s.loadHoldings(w, r)
	if !ok {
		return
	}

	report, err := s.app.AnalysisService.AnalyzeRisk(r.Context(), holdings, time.Now())
	if err != nil {
		s.writeServiceError(w, err, "Error analyzing portfolio risk")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
