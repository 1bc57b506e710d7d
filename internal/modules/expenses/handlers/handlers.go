// Package handlers provides HTTP handlers for expense management.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/expenses"
)

// Handler handles expense HTTP requests
type Handler struct {
	repo     *expenses.Repository
	eventMgr *events.Manager
	log      zerolog.Logger
}

// NewHandler creates a new expense handler
func NewHandler(repo *expenses.Repository, eventMgr *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		eventMgr: eventMgr,
		log:      log.With().Str("handler", "expenses").Logger(),
	}
}

// RegisterRoutes registers all expense routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/{id}", h.HandleGet)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})
}

type expenseRequest struct {
	Amount      float64                `json:"amount"`
	Category    domain.ExpenseCategory `json:"category"`
	Description string                 `json:"description"`
	Date        time.Time              `json:"date"`
	PalletIDs   []string               `json:"pallet_ids"`
}

func (req expenseRequest) validate() string {
	if req.Amount < 0 {
		return "amount must be >= 0"
	}
	return ""
}

// HandleList returns all expenses.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.GetAll()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if all == nil {
		all = []domain.Expense{}
	}
	h.writeJSON(w, http.StatusOK, all)
}

// HandleGet returns one expense.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	expense, err := h.repo.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if expense == nil {
		h.writeError(w, http.StatusNotFound, "expense not found")
		return
	}
	h.writeJSON(w, http.StatusOK, expense)
}

// HandleCreate inserts a new expense with its pallet links.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := h.repo.Create(domain.Expense{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		PalletIDs:   req.PalletIDs,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.ExpenseCreated, "expenses", map[string]interface{}{
		"id":     created.ID,
		"amount": created.Amount,
	})

	h.writeJSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces an expense and its links.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.repo.GetByID(id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		h.writeError(w, http.StatusNotFound, "expense not found")
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		h.writeError(w, http.StatusBadRequest, msg)
		return
	}

	updated := domain.Expense{
		ID:          id,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date,
		PalletIDs:   req.PalletIDs,
		CreatedAt:   existing.CreatedAt,
	}
	if err := h.repo.Update(updated); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.eventMgr.Emit(events.ExpenseUpdated, "expenses", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes an expense.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.repo.Delete(id); err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.eventMgr.Emit(events.ExpenseDeleted, "expenses", map[string]interface{}{"id": id})
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
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
