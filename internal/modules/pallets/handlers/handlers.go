// Package handlers provides HTTP handlers for pallet management.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/pallets"
)

// Handler handles pallet HTTP requests
type Handler struct {
	repo     *pallets.Repository
	service  *pallets.Service
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new pallet handler
func NewHandler(repo *pallets.Repository, service *pallets.Service, eventMgr *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		eventMgr: eventMgr,
		log:      log.With().Str("handler", "pallets").Logger(),
	}
}

// RegisterRoutes registers all pallet routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/pallets", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/summary", h.HandleSummary)
		r.Get("/{id}/allocation", h.HandleAllocation)
	})
}

// palletRequest is the create/update payload.
type palletRequest struct {
	Name         string              `json:"name"`
	Source       string              `json:"source"`
	PurchaseCost float64             `json:"purchase_cost"`
	SalesTax     *float64            `json:"sales_tax"`
	Status       domain.PalletStatus `json:"status"`
	PurchaseDate time.Time           `json:"purchase_date"`
}

func (req palletRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.PurchaseCost < 0 {
		return "purchase_cost must be >= 0"
	}
	if req.SalesTax != nil && *req.SalesTax < 0 {
		return "sales_tax must be >= 0"
	}
	return ""
}

// HandleList returns all pallets.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []domain.Pallet{}
	}
	h.writeJSON(w, http.StatusOK, all)
}

// HandleGet returns one pallet.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	pallet, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pallet == nil {
		h.writeError(w, http.StatusNotFound, "pallet not found")
		return
	}
	h.writeJSON(w, http.StatusOK, pallet)
}

// HandleCreate inserts a new pallet.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req palletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.service.Create(domain.Pallet{
		Name:         req.Name,
		Source:       req.Source,
		PurchaseCost: req.PurchaseCost,
		SalesTax:     req.SalesTax,
		Status:       req.Status,
		PurchaseDate: req.PurchaseDate,
	})
	if errors.Is(err, pallets.ErrPalletLimit) {
		h.writeError(w, http.StatusPaymentRequired, err.Error())
		return
	}
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.PalletCreated, "pallets", map[string]interface{}{
		"id":   created.ID,
		"name": created.Name,
	})

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a pallet's mutable fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "pallet not found")
		return
	}

	var req palletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated := *existing
	updated.Name = req.Name
	updated.Source = req.Source
	updated.PurchaseCost = req.PurchaseCost
	updated.SalesTax = req.SalesTax
	if req.Status != "" {
		updated.Status = req.Status
	}
	if !req.PurchaseDate.IsZero() {
		updated.PurchaseDate = req.PurchaseDate
	}

	if err := h.repo.Update(updated); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.PalletUpdated, "pallets", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a pallet.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.eventMgr.Emit(events.PalletDeleted, "pallets", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// HandleSummary returns the pallet's financial rollup.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// HandleAllocation returns the current per-item cost split.
func (h *Handler) HandleAllocation(w http.ResponseWriter, r *http.Request) {
	alloc, err := h.service.Allocation(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"per_item":       alloc.PerItem,
		"eligible_count": alloc.EligibleCount,
		"costs":          alloc.Costs,
	})
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
