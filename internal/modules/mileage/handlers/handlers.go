// Package handlers provides HTTP handlers for mileage tracking.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/mileage"
)

// Handler handles mileage HTTP requests
type Handler struct {
	service  *mileage.Service
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new mileage handler
func NewHandler(service *mileage.Service, eventMgr *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		eventMgr: eventMgr,
		log:      log.With().Str("handler", "mileage").Logger(),
	}
}

// RegisterRoutes registers all mileage routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/mileage", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleLog)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/summary", h.HandleSummary)
	})
}

// HandleList returns all trips with their deduction values.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []mileage.Entry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// HandleLog records a new trip.
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	var req domain.MileageEntry
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.service.Log(req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.eventMgr.Emit(events.MileageLogged, "mileage", map[string]interface{}{
		"id":    entry.ID,
		"miles": entry.Miles,
	})

	h.writeJSON(w, http.StatusCreated, entry)
}

// HandleDelete removes a trip.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// HandleSummary totals miles and deduction, with optional from/to filters
// (RFC 3339).
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		to = &t
	}

	summary, err := h.service.Summarize(from, to)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
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
