// Package handlers provides HTTP handlers for inventory snapshots.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/modules/snapshots"
)

// Handler handles snapshot HTTP requests
type Handler struct {
	service *snapshots.Service
	log     zerolog.Logger
}

// NewHandler creates a new snapshot handler
func NewHandler(service *snapshots.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "snapshots").Logger(),
	}
}

// RegisterRoutes registers all snapshot routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/snapshots", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.Get("/latest", h.HandleLatest)
		r.Post("/capture", h.HandleCapture)
	})
}

// HandleHistory returns snapshots in a date range (default: last 90 days).
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		to = time.Now().UTC().Format("2006-01-02")
	}
	from := r.URL.Query().Get("from")
	if from == "" {
		from = time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")
	}

	history, err := h.service.History(from, to)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []snapshots.Snapshot{}
	}
	h.writeJSON(w, http.StatusOK, history)
}

// HandleLatest returns the newest snapshot with its per-pallet detail.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Latest()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snap == nil {
		h.writeError(w, http.StatusNotFound, "no snapshots captured yet")
		return
	}

	details, err := snapshots.DecodeDetail(*snap)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot": snap,
		"pallets":  details,
	})
}

// HandleCapture triggers an immediate snapshot outside the daily schedule.
func (h *Handler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Capture(time.Now())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, snap)
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
