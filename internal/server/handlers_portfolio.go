package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bobmcallan/navfolio/internal/importer"
	"github.com/bobmcallan/navfolio/internal/interfaces"
)

const maxUploadBytes = 5 << 20

// --- Portfolio handlers ---

// handlePortfolioRoot handles GET (list) and POST (create) on /api/portfolios.
func (s *Server) handlePortfolioRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	if r.Method == http.MethodGet {
		portfolios, err := s.app.PortfolioService.ListPortfolios(r.Context(), uc.UserID)
		if err != nil {
			s.writeServiceError(w, err, "Error listing portfolios")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"portfolios": portfolios,
		})
		return
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	p, err := s.app.PortfolioService.CreatePortfolio(r.Context(), uc.UserID, req.Name, req.Description)
	if err != nil {
		s.writeServiceError(w, err, "Error creating portfolio")
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

// handlePortfolio handles GET and DELETE on /api/portfolios/{id}.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.app.PortfolioService.DeletePortfolio(r.Context(), uc.UserID, id); err != nil {
			s.writeServiceError(w, err, "Error deleting portfolio")
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
		return
	}

	p, err := s.app.PortfolioService.GetPortfolio(r.Context(), uc.UserID, id)
	if err != nil {
		s.writeServiceError(w, err, "Error loading portfolio")
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// holdingRequest accepts buy_date as YYYY-MM-DD, DD-MM-YYYY or RFC3339.
type holdingRequest struct {
	SchemeCode string  `json:"scheme_code"`
	Units      float64 `json:"units"`
	BuyPrice   float64 `json:"buy_price"`
	BuyDate    string  `json:"buy_date"`
}

// handleHoldingAdd handles POST /api/portfolios/{id}/holdings.
func (s *Server) handleHoldingAdd(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	var req holdingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	var buyDate time.Time
	if strings.TrimSpace(req.BuyDate) != "" {
		d, err := importer.ParseDate(req.BuyDate)
		if err != nil {
			WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid buy_date %q", req.BuyDate))
			return
		}
		buyDate = d
	}

	p, err := s.app.PortfolioService.AddHolding(r.Context(), uc.UserID, id, interfaces.HoldingInput{
		SchemeCode: req.SchemeCode,
		Units:      req.Units,
		BuyPrice:   req.BuyPrice,
		BuyDate:    buyDate,
	})
	if err != nil {
		s.writeServiceError(w, err, "Error adding holding")
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

// handleHoldingRemove handles DELETE /api/portfolios/{id}/holdings/{hid}.
func (s *Server) handleHoldingRemove(w http.ResponseWriter, r *http.Request, id, holdingID string) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	p, err := s.app.PortfolioService.RemoveHolding(r.Context(), uc.UserID, id, holdingID)
	if err != nil {
		s.writeServiceError(w, err, "Error removing holding")
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// handlePortfolioUpload handles POST /api/portfolios/upload as multipart form
// data with a "file" part and an optional "name" field.
func (s *Server) handlePortfolioUpload(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	uc := requireUser(w, r)
	if uc == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	p, err := s.app.PortfolioService.ImportPortfolio(r.Context(), uc.UserID, r.FormValue("name"), filepath.Base(header.Filename), data)
	if err != nil {
		s.writeServiceError(w, err, "Error importing portfolio")
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}
