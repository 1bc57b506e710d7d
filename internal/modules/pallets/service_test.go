package pallets_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/database"
	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/expenses"
	"github.com/palletpulse/palletpulse/internal/modules/items"
	"github.com/palletpulse/palletpulse/internal/modules/pallets"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

type fixedPolicy profit.AllocationPolicy

func (p fixedPolicy) AllocationPolicy() (profit.AllocationPolicy, error) {
	return profit.AllocationPolicy(p), nil
}

func (p fixedPolicy) GetFloat(key string) (float64, error) {
	return 3, nil // pallet limit
}

type fixedQuota bool

func (q fixedQuota) UnlimitedPallets() (bool, error) { return bool(q), nil }

type testEnv struct {
	pallets  *pallets.Repository
	items    *items.Repository
	expenses *expenses.Repository
	service  *pallets.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "inventory.db"),
		Name: "inventory",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		pallets:  pallets.NewRepository(db.Conn(), zerolog.Nop()),
		items:    items.NewRepository(db.Conn(), zerolog.Nop()),
		expenses: expenses.NewRepository(db.Conn(), zerolog.Nop()),
	}
	env.service = pallets.NewService(env.pallets, env.items, env.expenses,
		fixedPolicy(profit.ExcludeUnsellable), fixedQuota(true), zerolog.Nop())
	return env
}

func f(v float64) *float64 { return &v }

func TestRepository_CRUD(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.pallets.Create(domain.Pallet{
		Name:         "Amazon returns lot",
		Source:       "B-Stock",
		PurchaseCost: 250,
		SalesTax:     f(20),
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.PalletUnprocessed, created.Status, "status defaults")

	got, err := env.pallets.GetByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Amazon returns lot", got.Name)
	require.NotNil(t, got.SalesTax)
	assert.Equal(t, 20.0, *got.SalesTax)

	got.Status = domain.PalletCompleted
	require.NoError(t, env.pallets.Update(*got))

	count, err := env.pallets.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, env.pallets.Delete(created.ID))
	missing, err := env.pallets.GetByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestService_SummaryRollsUpItemsAndExpenses(t *testing.T) {
	env := newTestEnv(t)

	pallet, err := env.pallets.Create(domain.Pallet{
		Name:         "Liquidation lot",
		PurchaseCost: 100,
		SalesTax:     f(10),
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	saleDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	platform := domain.MarketplaceEBay
	_, err = env.items.Create(domain.Item{
		PalletID: &pallet.ID, Name: "Drill", Status: domain.ItemSold,
		SalePrice: f(150), SaleDate: &saleDate, Platform: &platform,
	})
	require.NoError(t, err)
	_, err = env.items.Create(domain.Item{
		PalletID: &pallet.ID, Name: "Lamp", Status: domain.ItemListed, ListingPrice: f(40),
	})
	require.NoError(t, err)

	// $20 expense split across this pallet and another
	other, err := env.pallets.Create(domain.Pallet{
		Name: "Other lot", PurchaseCost: 50,
		PurchaseDate: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = env.expenses.Create(domain.Expense{
		Amount: 20, Category: domain.ExpenseStorage,
		Date:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		PalletIDs: []string{pallet.ID, other.ID},
	})
	require.NoError(t, err)

	summary, err := env.service.Summary(pallet.ID)
	require.NoError(t, err)

	// Cost: 100 + 10 tax + 10 expense share = 120
	assert.InDelta(t, 150.0, summary.TotalRevenue, 0.001)
	assert.InDelta(t, 120.0, summary.TotalCost, 0.001)
	assert.InDelta(t, 30.0, summary.NetProfit, 0.001)
	assert.InDelta(t, 25.0, summary.ROI, 0.001)
	assert.Equal(t, 1, summary.SoldCount)
	assert.Equal(t, 1, summary.UnsoldCount)
	assert.InDelta(t, 40.0, summary.UnsoldValue, 0.001)
}

func TestService_SummaryMissingPalletDegrades(t *testing.T) {
	env := newTestEnv(t)

	summary, err := env.service.Summary("no-such-pallet")
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.TotalCost)
	assert.Equal(t, 0, summary.TotalCount)
}

func TestService_CreateEnforcesFreeTierCap(t *testing.T) {
	env := newTestEnv(t)
	capped := pallets.NewService(env.pallets, env.items, env.expenses,
		fixedPolicy(profit.ExcludeUnsellable), fixedQuota(false), zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := capped.Create(domain.Pallet{
			Name:         "Lot",
			PurchaseCost: 10,
			PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}

	_, err := capped.Create(domain.Pallet{
		Name:         "One too many",
		PurchaseCost: 10,
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, pallets.ErrPalletLimit)

	// Unlimited accounts pass straight through
	_, err = env.service.Create(domain.Pallet{
		Name:         "Fourth lot",
		PurchaseCost: 10,
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestService_AllocationExcludesUnsellable(t *testing.T) {
	env := newTestEnv(t)

	pallet, err := env.pallets.Create(domain.Pallet{
		Name: "Mixed lot", PurchaseCost: 100, SalesTax: f(10),
		PurchaseDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	good1, err := env.items.Create(domain.Item{PalletID: &pallet.ID, Name: "Good one"})
	require.NoError(t, err)
	good2, err := env.items.Create(domain.Item{PalletID: &pallet.ID, Name: "Good two"})
	require.NoError(t, err)
	broken, err := env.items.Create(domain.Item{
		PalletID: &pallet.ID, Name: "Broken", Condition: domain.ConditionUnsellable,
	})
	require.NoError(t, err)

	alloc, err := env.service.Allocation(pallet.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, alloc.EligibleCount)
	assert.InDelta(t, 55.0, alloc.Costs[good1.ID], 0.001)
	assert.InDelta(t, 55.0, alloc.Costs[good2.ID], 0.001)
	assert.Equal(t, 0.0, alloc.Costs[broken.ID])

	_, err = env.service.Allocation("no-such-pallet")
	assert.Error(t, err)
}
