// Package handlers provides HTTP handlers for CSV export. All routes sit
// behind the pro-tier gate.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/modules/export"
)

// Handler handles export HTTP requests
type Handler struct {
	service *export.Service
	gate    func(http.Handler) http.Handler
	log     zerolog.Logger
}

// NewHandler creates a new export handler. gate is the subscription
// middleware enforcing the export entitlement.
func NewHandler(service *export.Service, gate func(http.Handler) http.Handler, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		gate:    gate,
		log:     log.With().Str("handler", "export").Logger(),
	}
}

// RegisterRoutes registers all export routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Use(h.gate)
		r.Get("/history", h.HandleHistory)
		r.Get("/{kind}", h.HandleExport)
	})
}

// HandleExport streams one export kind as a CSV attachment.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	kind := export.Kind(chi.URLParam(r, "kind"))

	valid := false
	for _, k := range export.Kinds {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown export kind %q", kind))
		return
	}

	result, err := h.service.Generate(r.Context(), kind)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	if _, err := w.Write(result.Data); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV response")
	}
}

// HandleHistory returns recent exports.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	history, err := h.service.History(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []export.LogEntry{}
	}
	h.writeJSON(w, http.StatusOK, history)
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
