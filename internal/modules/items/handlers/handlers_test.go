package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/events"
	"github.com/palletpulse/palletpulse/internal/modules/items"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

type stubAllocator struct{}

func (stubAllocator) Allocation(palletID string) (profit.Allocation, error) {
	return profit.Allocation{}, nil
}

type stubFees struct{}

func (stubFees) FeeSchedule() (profit.FeeSchedule, error) {
	return profit.DefaultFeeRates, nil
}

func newTestRouter(t *testing.T) (chi.Router, *items.Repository) {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
		Name: "inventory",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	repo := items.NewRepository(db.Conn(), zerolog.Nop())
	svc := items.NewService(repo, stubAllocator{}, stubFees{}, zerolog.Nop())
	mgr := events.NewManager(events.NewBus(), zerolog.Nop())
	h := NewHandler(repo, svc, mgr, zerolog.Nop())

	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router, repo
}

func TestHandleUpdate_RejectsInvalidPayloads(t *testing.T) {
	router, repo := newTestRouter(t)

	created, err := repo.Create(domain.Item{Name: "Lamp", Quantity: 1})
	require.NoError(t, err)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"quantity":1}`},
		{"negative quantity", `{"name":"Lamp","quantity":-1}`},
		{"sold without sale price", `{"name":"Lamp","status":"sold"}`},
		{"negative sale price", `{"name":"Lamp","status":"sold","sale_price":-5}`},
		{"negative shipping cost", `{"name":"Lamp","shipping_cost":-2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/items/"+created.ID, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Rejected updates leave the item untouched
	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Quantity)
}

func TestHandleUpdate_AcceptsValidPayload(t *testing.T) {
	router, repo := newTestRouter(t)

	created, err := repo.Create(domain.Item{Name: "Lamp", Quantity: 1})
	require.NoError(t, err)

	body := `{"name":"Brass lamp","quantity":2,"status":"listed","listing_price":25}`
	req := httptest.NewRequest(http.MethodPut, "/items/"+created.ID, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Brass lamp", got.Name)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, domain.ItemListed, got.Status)
	require.NotNil(t, got.ListingPrice)
	assert.Equal(t, 25.0, *got.ListingPrice)
}

func TestHandleCreate_RejectsSoldWithoutSalePrice(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Pre-sold widget","status":"sold"}`
	req := httptest.NewRequest(http.MethodPost, "/items/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
