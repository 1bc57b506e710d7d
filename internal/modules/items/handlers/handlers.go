// Package handlers provides HTTP handlers for item management.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/items"
)

// Handler handles item HTTP requests
type Handler struct {
	repo     *items.Repository
	service  *items.Service
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new item handler
func NewHandler(repo *items.Repository, service *items.Service, eventMgr *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		service:  service,
		eventMgr: eventMgr,
		log:      log.With().Str("handler", "items").Logger(),
	}
}

// RegisterRoutes registers all item routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/items", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/economics", h.HandleEconomics)
		r.Post("/{id}/sale", h.HandleRecordSale)
	})
}

// HandleList returns items, optionally filtered by status or pallet.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var (
		result []domain.Item
		err    error
	)

	switch {
	case r.URL.Query().Get("pallet_id") != "":
		result, err = h.repo.ListByPallet(r.URL.Query().Get("pallet_id"))
	case r.URL.Query().Get("status") != "":
		result, err = h.repo.ListByStatus(domain.ItemStatus(r.URL.Query().Get("status")))
	default:
		result, err = h.repo.GetAll()
	}

	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		result = []domain.Item{}
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleGet returns one item.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.repo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// itemRequest is the create/update payload.
type itemRequest struct {
	PalletID      *string              `json:"pallet_id"`
	Name          string               `json:"name"`
	Quantity      int                  `json:"quantity"`
	Condition     domain.ItemCondition `json:"condition"`
	Status        domain.ItemStatus    `json:"status"`
	ListingPrice  *float64             `json:"listing_price"`
	RetailPrice   *float64             `json:"retail_price"`
	PurchaseCost  *float64             `json:"purchase_cost"`
	AllocatedCost *float64             `json:"allocated_cost"`
	SalePrice     *float64             `json:"sale_price"`
	SaleDate      *time.Time           `json:"sale_date"`
	Platform      *domain.Marketplace  `json:"platform"`
	PlatformFee   *float64             `json:"platform_fee"`
	ShippingCost  *float64             `json:"shipping_cost"`
}

func (req itemRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Quantity < 0 {
		return "quantity must be >= 0"
	}
	amounts := []struct {
		field string
		value *float64
	}{
		{"listing_price", req.ListingPrice},
		{"retail_price", req.RetailPrice},
		{"purchase_cost", req.PurchaseCost},
		{"allocated_cost", req.AllocatedCost},
		{"sale_price", req.SalePrice},
		{"platform_fee", req.PlatformFee},
		{"shipping_cost", req.ShippingCost},
	}
	for _, a := range amounts {
		if a.value != nil && *a.value < 0 {
			return a.field + " must be >= 0"
		}
	}
	if req.Status == domain.ItemSold && req.SalePrice == nil {
		return "sold items require a sale_price"
	}
	return ""
}

func (req itemRequest) item() domain.Item {
	return domain.Item{
		PalletID:      req.PalletID,
		Name:          req.Name,
		Quantity:      req.Quantity,
		Condition:     req.Condition,
		Status:        req.Status,
		ListingPrice:  req.ListingPrice,
		RetailPrice:   req.RetailPrice,
		PurchaseCost:  req.PurchaseCost,
		AllocatedCost: req.AllocatedCost,
		SalePrice:     req.SalePrice,
		SaleDate:      req.SaleDate,
		Platform:      req.Platform,
		PlatformFee:   req.PlatformFee,
		ShippingCost:  req.ShippingCost,
	}
}

// HandleCreate inserts a new item.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.repo.Create(req.item())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.ItemCreated, "items", map[string]interface{}{
		"id":   created.ID,
		"name": created.Name,
	})

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces an item's mutable fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated := req.item()
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	if err := h.repo.Update(updated); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.ItemUpdated, "items", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes an item.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.eventMgr.Emit(events.ItemDeleted, "items", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// HandleEconomics returns the item's resolved cost, profit, and ROI.
func (h *Handler) HandleEconomics(w http.ResponseWriter, r *http.Request) {
	econ, err := h.service.Economics(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, econ)
}

// HandleRecordSale marks an item sold.
func (h *Handler) HandleRecordSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req items.SaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.service.RecordSale(id, req)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.eventMgr.Emit(events.ItemSold, "items", map[string]interface{}{
		"id":         item.ID,
		"sale_price": *item.SalePrice,
		"platform":   string(*item.Platform),
	})

	h.writeJSON(w, http.StatusOK, item)
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
