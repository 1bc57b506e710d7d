// Package handlers provides HTTP handlers for settings management.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/settings"
)

// Handler handles settings HTTP requests
type Handler struct {
	service  *settings.Service
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, eventMgr *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		eventMgr: eventMgr,
		log:      log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetAll)
		r.Put("/{key}", h.HandleSet)
		r.Get("/fees", h.HandleGetFeeSchedule)
	})
}

// HandleGetAll returns every stored setting.
func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.All()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, all)
}

// HandleSet updates a single setting value.
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var body struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Set(key, body.Value); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.SettingsChanged, "settings", map[string]interface{}{
		"key": key,
	})

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

// HandleGetFeeSchedule returns the resolved marketplace fee schedule.
func (h *Handler) HandleGetFeeSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.FeeSchedule()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, schedule)
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
