package server

import (
	"net/http"
	"strings"
)

// --- Mutual fund handlers ---

// handleFundSearch handles GET /api/mutual-funds/search?query=.
func (s *Server) handleFundSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	hits, err := s.app.FundService.Search(r.Context(), query)
	if err != nil {
		s.writeServiceError(w, err, "Error searching funds")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": hits,
	})
}

// handleFundCompare handles GET /api/mutual-funds/compare?schemeCodes=a,b&duration=.
func (s *Server) handleFundCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	raw := q.Get("schemeCodes")
	if raw == "" {
		raw = q.Get("scheme_codes")
	}
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}

	funds, err := s.app.FundService.Compare(r.Context(), codes, q.Get("duration"))
	if err != nil {
		s.writeServiceError(w, err, "Error comparing funds")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"funds": funds,
	})
}

// handleFundDetails handles GET /api/mutual-funds/{code}?duration=.
func (s *Server) handleFundDetails(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	h, err := s.app.FundService.History(r.Context(), code, r.URL.Query().Get("duration"))
	if err != nil {
		s.writeServiceError(w, err, "Error loading fund")
		return
	}
	WriteJSON(w, http.StatusOK, h)
}

// handleFundChart handles GET /api/mutual-funds/{code}/chart?duration= and returns a PNG.
func (s *Server) handleFundChart(w http.ResponseWriter, r *http.Request, code string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.FundService.Chart(r.Context(), code, r.URL.Query().Get("duration"))
	if err != nil {
		s.writeServiceError(w, err, "Error rendering chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
