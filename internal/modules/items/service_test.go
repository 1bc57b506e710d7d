package items

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

type stubAllocator struct {
	costs map[string]float64
}

func (a *stubAllocator) Allocation(palletID string) (profit.Allocation, error) {
	return profit.Allocation{Costs: a.costs}, nil
}

type stubFees struct{}

func (stubFees) FeeSchedule() (profit.FeeSchedule, error) {
	return profit.DefaultFeeRates, nil
}

func f(v float64) *float64 { return &v }

func newTestService(t *testing.T, alloc *stubAllocator) (*Service, *Repository) {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
		Name: "inventory",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	// Seed the pallet referenced by tests so item inserts satisfy the
	// items.pallet_id foreign key, mirroring the expenses test helper.
	_, err = db.Exec(`
		INSERT INTO pallets (id, name, source, purchase_cost, status, purchase_date, created_at)
		VALUES ('pal-1', 'pallet pal-1', '', 0, 'unprocessed', ?, ?)`,
		time.Now().Unix(), time.Now().Unix())
	require.NoError(t, err)

	repo := NewRepository(db.Conn(), zerolog.Nop())
	svc := NewService(repo, alloc, stubFees{}, zerolog.Nop())
	return svc, repo
}

func TestService_EconomicsUsesAllocationEstimate(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	svc, repo := newTestService(t, alloc)

	palletID := "pal-1"
	item, err := repo.Create(domain.Item{
		PalletID: &palletID, Name: "Blender", ListingPrice: f(60),
	})
	require.NoError(t, err)
	alloc.costs[item.ID] = 25

	econ, err := svc.Economics(item.ID)
	require.NoError(t, err)

	assert.Equal(t, 25.0, econ.EffectiveCost)
	assert.Equal(t, profit.CostEstimated, econ.CostSource)
	assert.True(t, econ.Estimated, "listing price stands in for sale price")
	assert.InDelta(t, 35.0, econ.Profit, 0.001)
	assert.InDelta(t, 140.0, econ.ROI, 0.001)
	assert.Equal(t, profit.BandStrongPositive, econ.ROIBand)
}

func TestService_EconomicsAllocatedCostWins(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	svc, repo := newTestService(t, alloc)

	palletID := "pal-1"
	item, err := repo.Create(domain.Item{
		PalletID: &palletID, Name: "Toaster", AllocatedCost: f(30), SalePrice: f(50),
		Status: domain.ItemSold,
	})
	require.NoError(t, err)
	alloc.costs[item.ID] = 99 // must be ignored

	econ, err := svc.Economics(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 30.0, econ.EffectiveCost)
	assert.Equal(t, profit.CostAllocated, econ.CostSource)
	assert.False(t, econ.Estimated)
}

func TestService_RecordSaleComputesFeeFromSchedule(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	svc, repo := newTestService(t, alloc)

	palletID := "pal-1"
	item, err := repo.Create(domain.Item{PalletID: &palletID, Name: "Headphones"})
	require.NoError(t, err)
	alloc.costs[item.ID] = 15

	sold, err := svc.RecordSale(item.ID, SaleRequest{
		SalePrice: 100,
		Platform:  domain.MarketplaceEBay,
		Shipped:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ItemSold, sold.Status)
	require.NotNil(t, sold.PlatformFee)
	assert.InDelta(t, 13.25, *sold.PlatformFee, 0.001)
	require.NotNil(t, sold.AllocatedCost)
	assert.Equal(t, 15.0, *sold.AllocatedCost, "effective cost frozen at sale time")
	require.NotNil(t, sold.SaleDate)

	// Persisted
	got, err := repo.GetByID(item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ItemSold, got.Status)
	require.NotNil(t, got.SalePrice)
	assert.Equal(t, 100.0, *got.SalePrice)
}

func TestService_RecordSaleManualFeeOverride(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	svc, repo := newTestService(t, alloc)

	item, err := repo.Create(domain.Item{Name: "Local pickup table"})
	require.NoError(t, err)

	saleDate := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	sold, err := svc.RecordSale(item.ID, SaleRequest{
		SalePrice:   80,
		Platform:    domain.MarketplaceManual,
		SaleDate:    &saleDate,
		PlatformFee: f(4.50),
	})
	require.NoError(t, err)

	require.NotNil(t, sold.PlatformFee)
	assert.Equal(t, 4.50, *sold.PlatformFee)
	assert.True(t, sold.SaleDate.Equal(saleDate))
}

func TestService_RecordSaleRejectsNegativePrice(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	svc, repo := newTestService(t, alloc)

	item, err := repo.Create(domain.Item{Name: "Widget"})
	require.NoError(t, err)

	_, err = svc.RecordSale(item.ID, SaleRequest{SalePrice: -1, Platform: domain.MarketplaceEBay})
	assert.Error(t, err)

	_, err = svc.RecordSale("missing", SaleRequest{SalePrice: 10, Platform: domain.MarketplaceEBay})
	assert.Error(t, err)
}

func TestRepository_ListFilters(t *testing.T) {
	alloc := &stubAllocator{costs: map[string]float64{}}
	_, repo := newTestService(t, alloc)

	palletID := "pal-1"
	_, err := repo.Create(domain.Item{PalletID: &palletID, Name: "A"})
	require.NoError(t, err)
	_, err = repo.Create(domain.Item{Name: "B", Status: domain.ItemListed})
	require.NoError(t, err)

	byPallet, err := repo.ListByPallet(palletID)
	require.NoError(t, err)
	require.Len(t, byPallet, 1)
	assert.Equal(t, "A", byPallet[0].Name)

	listed, err := repo.ListByStatus(domain.ItemListed)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "B", listed[0].Name)
}
