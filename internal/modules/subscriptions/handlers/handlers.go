// Package handlers provides HTTP handlers for subscription management.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/modules/subscriptions"
)

// Handler handles subscription HTTP requests
type Handler struct {
	service *subscriptions.Service
	log     zerolog.Logger
}

// NewHandler creates a new subscription handler
func NewHandler(service *subscriptions.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "subscriptions").Logger(),
	}
}

// RegisterRoutes registers all subscription routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/subscription", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Put("/", h.HandleUpdate)
	})
}

// HandleGet returns the current subscription.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.Current()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

// HandleUpdate changes the account tier.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tier      subscriptions.Tier `json:"tier"`
		ExpiresAt *time.Time         `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sub, err := h.service.Upgrade(req.Tier, req.ExpiresAt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
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
