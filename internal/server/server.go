// Package server exposes the aggregation engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kpavlov42/placeradar/internal/costs"
	"github.com/kpavlov42/placeradar/internal/domain"
	"github.com/kpavlov42/placeradar/internal/metrics"
	"github.com/kpavlov42/placeradar/internal/places"
	"github.com/kpavlov42/placeradar/internal/repository"
	"github.com/kpavlov42/placeradar/internal/service"
)

const searchTimeout = 15 * time.Minute

type Server struct {
	aggregator service.Aggregator
	merger     *service.Merger
	places     places.Client
	store      repository.BusinessStore
	tally      *costs.Tally
	rates      costs.RateTable
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

type Deps struct {
	Aggregator service.Aggregator
	Merger     *service.Merger
	Places     places.Client
	Store      repository.BusinessStore
	Tally      *costs.Tally
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

func New(deps Deps) *Server {
	return &Server{
		aggregator: deps.Aggregator,
		merger:     deps.Merger,
		places:     deps.Places,
		store:      deps.Store,
		tally:      deps.Tally,
		rates:      costs.DefaultRates,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/validate-address", s.handleValidateAddress)
	r.Post("/search", s.handleSearch)
	r.Get("/businesses", s.handleBusinesses)
	r.Get("/cost", s.handleCost)

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

type validateAddressRequest struct {
	Address string `json:"address"`
}

type suggestionResponse struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type searchRequest struct {
	PlaceID      string   `json:"place_id"`
	Query        string   `json:"query"`
	RadiusMeters int      `json:"radius_m"`
	Categories   []string `json:"categories"`
	Location     string   `json:"location"`
}

type searchResponse struct {
	Found    int               `json:"found"`
	Appended int               `json:"appended"`
	Total    int               `json:"total"`
	Cost     costs.Estimate    `json:"cost"`
	New      []domain.Business `json:"new"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidateAddress(w http.ResponseWriter, r *http.Request) {
	var req validateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "address is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	suggestions, err := s.places.Autocomplete(ctx, req.Address)
	if err != nil {
		s.logger.Warn("autocomplete failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	if len(suggestions) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrAddressNotFound.Error()})
		return
	}

	out := make([]suggestionResponse, 0, len(suggestions))
	for _, sug := range suggestions {
		out = append(out, suggestionResponse{Description: sug.Description, PlaceID: sug.PlaceID})
	}
	writeJSON(w, http.StatusOK, map[string][]suggestionResponse{"suggestions": out})
}

// handleSearch runs a full aggregation session and merges the outcome into
// the persistent store before responding.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), searchTimeout)
	defer cancel()

	found, err := s.aggregator.Search(ctx, service.SearchRequest{
		Area:         domain.AreaReference{PlaceID: req.PlaceID, Query: req.Query},
		RadiusMeters: req.RadiusMeters,
		Categories:   req.Categories,
		Location:     req.Location,
	})
	if err != nil {
		s.recordSession("error")
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	appended, total, err := s.merger.Merge(ctx, found)
	if err != nil {
		s.recordSession("error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	est := costs.EstimateCost(s.tally, s.rates)
	s.recordSession("success")
	if s.metrics != nil {
		s.metrics.SetEstimatedCost(est.TotalCost)
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Found:    len(found),
		Appended: len(appended),
		Total:    total,
		Cost:     est,
		New:      appended,
	})
}

func (s *Server) handleBusinesses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	businesses, err := s.store.Load(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(businesses),
		"businesses": businesses,
	})
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, costs.EstimateCost(s.tally, s.rates))
}

func (s *Server) recordSession(status string) {
	if s.metrics != nil {
		s.metrics.RecordSearchSession(status)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyPlaceID),
		errors.Is(err, domain.ErrNoValidCategories):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAreaNotResolved):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return
	}
}
