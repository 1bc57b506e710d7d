package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palletpulse/palletpulse/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestAllocateCost_EvenSplitWithTax(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Condition: domain.ConditionGood},
		{ID: "b", Condition: domain.ConditionNew},
	}

	alloc := AllocateCost(100, f(10), items, ExcludeUnsellable)

	assert.Equal(t, 2, alloc.EligibleCount)
	assert.Equal(t, 55.0, alloc.PerItem)
	assert.Equal(t, 55.0, alloc.Costs["a"])
	assert.Equal(t, 55.0, alloc.Costs["b"])
}

func TestAllocateCost_UnsellableExcludedByDefault(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Condition: domain.ConditionGood},
		{ID: "b", Condition: domain.ConditionUnsellable},
		{ID: "c", Condition: domain.ConditionFair},
	}

	alloc := AllocateCost(100, nil, items, ExcludeUnsellable)

	assert.Equal(t, 2, alloc.EligibleCount)
	assert.Equal(t, 50.0, alloc.Costs["a"])
	assert.Equal(t, 0.0, alloc.Costs["b"])
	assert.Equal(t, 50.0, alloc.Costs["c"])
}

func TestAllocateCost_IncludeUnsellableOptIn(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Condition: domain.ConditionGood},
		{ID: "b", Condition: domain.ConditionUnsellable},
	}

	alloc := AllocateCost(100, nil, items, IncludeUnsellable)

	assert.Equal(t, 2, alloc.EligibleCount)
	assert.Equal(t, 50.0, alloc.Costs["a"])
	assert.Equal(t, 50.0, alloc.Costs["b"])
}

func TestAllocateCost_NoEligibleItemsIsZeroNotNaN(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Condition: domain.ConditionUnsellable},
	}

	alloc := AllocateCost(100, f(10), items, ExcludeUnsellable)

	assert.Equal(t, 0, alloc.EligibleCount)
	assert.Equal(t, 0.0, alloc.PerItem)
	assert.False(t, alloc.PerItem != alloc.PerItem, "per-item cost must not be NaN")
	assert.Equal(t, 0.0, alloc.Costs["a"])
}

func TestAllocateCost_EmptyItemList(t *testing.T) {
	alloc := AllocateCost(100, nil, nil, ExcludeUnsellable)

	assert.Equal(t, 0, alloc.EligibleCount)
	assert.Equal(t, 0.0, alloc.PerItem)
	assert.Empty(t, alloc.Costs)
}

func TestPalletAcquisitionCost_NilTaxIsZero(t *testing.T) {
	assert.Equal(t, 100.0, PalletAcquisitionCost(100, nil))
	assert.Equal(t, 110.0, PalletAcquisitionCost(100, f(10)))
}

func TestEffectiveCost_StoredAllocatedCostWins(t *testing.T) {
	item := domain.Item{
		AllocatedCost: f(42),
		PurchaseCost:  f(7),
	}

	cost, source := EffectiveCost(item, f(99))

	assert.Equal(t, 42.0, cost)
	assert.Equal(t, CostAllocated, source)
}

func TestEffectiveCost_EstimateBeforePurchase(t *testing.T) {
	item := domain.Item{PurchaseCost: f(7)}

	cost, source := EffectiveCost(item, f(12.5))

	assert.Equal(t, 12.5, cost)
	assert.Equal(t, CostEstimated, source)
}

func TestEffectiveCost_PurchaseCostFallback(t *testing.T) {
	item := domain.Item{PurchaseCost: f(7)}

	cost, source := EffectiveCost(item, nil)

	assert.Equal(t, 7.0, cost)
	assert.Equal(t, CostPurchase, source)
}

func TestEffectiveCost_NothingResolvesToZero(t *testing.T) {
	cost, source := EffectiveCost(domain.Item{}, nil)

	assert.Equal(t, 0.0, cost)
	assert.Equal(t, CostNone, source)
}
