package analytics

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

type fakeData struct {
	pallets   []domain.Pallet
	summaries map[string]profit.PalletSummary
	sold      []domain.Item
	expenses  []domain.Expense
}

func (f *fakeData) GetAll() ([]domain.Pallet, error) { return f.pallets, nil }

func (f *fakeData) Summary(palletID string) (profit.PalletSummary, error) {
	return f.summaries[palletID], nil
}

func (f *fakeData) ListByStatus(status domain.ItemStatus) ([]domain.Item, error) {
	return f.sold, nil
}

type fakeExpenses []domain.Expense

func (f fakeExpenses) GetAll() ([]domain.Expense, error) { return f, nil }

func fptr(v float64) *float64 { return &v }

func TestService_OverviewDistribution(t *testing.T) {
	data := &fakeData{
		pallets: []domain.Pallet{
			{ID: "a", Name: "Liquidation lot A"},
			{ID: "b", Name: "Returns pallet B"},
			{ID: "c", Name: "Shelf pulls C"},
		},
		summaries: map[string]profit.PalletSummary{
			"a": {ROI: 50, NetProfit: 100},
			"b": {ROI: 20, NetProfit: 40},
			"c": {ROI: -10, NetProfit: -15},
		},
	}
	svc := NewService(data, data, data, fakeExpenses(nil), zerolog.Nop())

	ov, err := svc.Overview()
	require.NoError(t, err)

	assert.Equal(t, 3, ov.PalletCount)
	assert.InDelta(t, 20.0, ov.MeanROI, 0.001)
	assert.InDelta(t, 20.0, ov.MedianROI, 0.001)
	assert.InDelta(t, 30.0, ov.StdDevROI, 0.001)
	assert.InDelta(t, 125.0, ov.TotalProfit, 0.001)

	require.NotNil(t, ov.Best)
	require.NotNil(t, ov.Worst)
	assert.Equal(t, "a", ov.Best.PalletID)
	assert.Equal(t, "c", ov.Worst.PalletID)
}

func TestService_OverviewEmpty(t *testing.T) {
	data := &fakeData{}
	svc := NewService(data, data, data, fakeExpenses(nil), zerolog.Nop())

	ov, err := svc.Overview()
	require.NoError(t, err)
	assert.Equal(t, 0, ov.PalletCount)
	assert.Nil(t, ov.Best)
	assert.Nil(t, ov.Worst)
	assert.Equal(t, 0.0, ov.MeanROI)
}

func TestService_ExpenseBreakdownSortsByTotal(t *testing.T) {
	data := &fakeData{}
	expenses := fakeExpenses{
		{Amount: 30, Category: domain.ExpenseStorage},
		{Amount: 70, Category: domain.ExpenseStorage},
		{Amount: 150, Category: domain.ExpenseEquipment},
		{Amount: 5, Category: domain.ExpenseSupplies},
	}
	svc := NewService(data, data, data, expenses, zerolog.Nop())

	breakdown, err := svc.ExpenseBreakdown()
	require.NoError(t, err)
	require.Len(t, breakdown, 3)

	assert.Equal(t, domain.ExpenseEquipment, breakdown[0].Category)
	assert.Equal(t, 150.0, breakdown[0].Total)
	assert.Equal(t, domain.ExpenseStorage, breakdown[1].Category)
	assert.Equal(t, 100.0, breakdown[1].Total)
	assert.Equal(t, 2, breakdown[1].Count)
}

func TestService_MonthlySeries(t *testing.T) {
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	data := &fakeData{
		sold: []domain.Item{
			{SalePrice: fptr(100), SaleDate: &jan, AllocatedCost: fptr(40), PlatformFee: fptr(10)},
			{SalePrice: fptr(50), SaleDate: &jan, AllocatedCost: fptr(20)},
			{SalePrice: fptr(200), SaleDate: &feb, AllocatedCost: fptr(80), ShippingCost: fptr(20)},
			// No sale date -> skipped
			{SalePrice: fptr(999)},
		},
	}
	svc := NewService(data, data, data, fakeExpenses(nil), zerolog.Nop())

	series, err := svc.MonthlySeries()
	require.NoError(t, err)
	require.Len(t, series, 2)

	assert.Equal(t, "2026-01", series[0].Month)
	assert.Equal(t, 150.0, series[0].Revenue)
	// (100-40-10) + (50-20) = 80
	assert.InDelta(t, 80.0, series[0].Profit, 0.001)
	assert.Equal(t, 2, series[0].Sales)

	assert.Equal(t, "2026-02", series[1].Month)
	// 200-80-20 = 100
	assert.InDelta(t, 100.0, series[1].Profit, 0.001)
}
