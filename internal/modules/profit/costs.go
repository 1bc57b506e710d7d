// Package profit is the pure calculation core of PalletPulse: pallet cost
// allocation, item profit/ROI, marketplace fees, and pallet-level rollups.
// Every function is a stateless transformation from a data snapshot to
// derived numbers; callers pass entities in, nothing is read from ambient
// state and nothing is mutated.
package profit

import "github.com/palletpulse/palletpulse/internal/domain"

// AllocationPolicy controls which items share a pallet's acquisition cost.
type AllocationPolicy int

const (
	// ExcludeUnsellable leaves unsellable-condition items out of the
	// divisor; they receive zero allocated cost. This is the default
	// business rule.
	ExcludeUnsellable AllocationPolicy = iota
	// IncludeUnsellable spreads the cost across every item regardless of
	// condition. Callers opt in explicitly.
	IncludeUnsellable
)

// Allocation is the result of spreading a pallet's acquisition cost.
type Allocation struct {
	// PerItem is the estimated cost for each eligible item. Zero when no
	// items are eligible (never NaN).
	PerItem float64
	// Costs maps item ID to its allocated cost. Items excluded by policy
	// get zero.
	Costs map[string]float64
	// EligibleCount is the divisor actually used.
	EligibleCount int
}

// PalletAcquisitionCost returns purchase cost plus sales tax, treating a
// nil tax as zero.
func PalletAcquisitionCost(purchaseCost float64, salesTax *float64) float64 {
	total := purchaseCost
	if salesTax != nil {
		total += *salesTax
	}
	return total
}

// AllocateCost distributes a pallet's total acquisition cost evenly across
// its eligible items. Zero eligible items yields a zero per-item cost by
// definition, not an error.
func AllocateCost(purchaseCost float64, salesTax *float64, items []domain.Item, policy AllocationPolicy) Allocation {
	alloc := Allocation{Costs: make(map[string]float64, len(items))}

	for _, it := range items {
		if eligibleForAllocation(it, policy) {
			alloc.EligibleCount++
		}
	}

	if alloc.EligibleCount > 0 {
		alloc.PerItem = PalletAcquisitionCost(purchaseCost, salesTax) / float64(alloc.EligibleCount)
	}

	for _, it := range items {
		if eligibleForAllocation(it, policy) {
			alloc.Costs[it.ID] = alloc.PerItem
		} else {
			alloc.Costs[it.ID] = 0
		}
	}

	return alloc
}

func eligibleForAllocation(it domain.Item, policy AllocationPolicy) bool {
	if policy == IncludeUnsellable {
		return true
	}
	return it.Condition != domain.ConditionUnsellable
}

// CostSource names the precedence tier that produced an effective cost.
type CostSource string

const (
	// CostAllocated means the item carried a stored allocated_cost; it
	// always wins over a freshly computed split.
	CostAllocated CostSource = "allocated"
	// CostEstimated means the pallet-split estimate was used.
	CostEstimated CostSource = "estimated"
	// CostPurchase means the item's own purchase cost was the fallback.
	CostPurchase CostSource = "purchase"
	// CostNone means no tier applied; the effective cost is zero.
	CostNone CostSource = "none"
)

// EffectiveCost resolves an item's cost basis through the ordered
// precedence chain: stored allocated cost, then the pallet-split estimate
// (pass nil when the item has no pallet context), then the item's own
// purchase cost, then zero.
func EffectiveCost(item domain.Item, palletEstimate *float64) (float64, CostSource) {
	if item.AllocatedCost != nil {
		return *item.AllocatedCost, CostAllocated
	}
	if palletEstimate != nil {
		return *palletEstimate, CostEstimated
	}
	if item.PurchaseCost != nil {
		return *item.PurchaseCost, CostPurchase
	}
	return 0, CostNone
}
