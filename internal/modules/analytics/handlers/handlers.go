// Package handlers provides HTTP handlers for the analytics module. All
// routes sit behind the pro-tier gate.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/modules/analytics"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *analytics.Service
	gate    func(http.Handler) http.Handler
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler. gate is the subscription
// middleware enforcing the analytics entitlement.
func NewHandler(service *analytics.Service, gate func(http.Handler) http.Handler, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		gate:    gate,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes registers all analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Use(h.gate)
		r.Get("/overview", h.HandleOverview)
		r.Get("/expenses", h.HandleExpenseBreakdown)
		r.Get("/monthly", h.HandleMonthlySeries)
	})
}

// HandleOverview returns the cross-pallet ROI distribution.
func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, ov)
}

// HandleExpenseBreakdown returns spend by category.
func (h *Handler) HandleExpenseBreakdown(w http.ResponseWriter, r *http.Request) {
	breakdown, err := h.service.ExpenseBreakdown()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if breakdown == nil {
		breakdown = []analytics.CategoryTotal{}
	}
	h.writeJSON(w, http.StatusOK, breakdown)
}

// HandleMonthlySeries returns realized profit bucketed by sale month.
func (h *Handler) HandleMonthlySeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.MonthlySeries()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if series == nil {
		series = []analytics.MonthlyProfit{}
	}
	h.writeJSON(w, http.StatusOK, series)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
