package profit

import "github.com/palletpulse/palletpulse/internal/domain"

// PalletSummary is the full financial rollup for one pallet.
type PalletSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalCost    float64 `json:"total_cost"`
	NetProfit    float64 `json:"net_profit"`
	ROI          float64 `json:"roi"`
	SoldCount    int     `json:"sold_count"`
	UnsoldCount  int     `json:"unsold_count"`
	TotalCount   int     `json:"total_count"`
	// UnsoldValue sums listing price over unsold items, falling back to
	// retail price, then zero.
	UnsoldValue float64 `json:"unsold_value"`
}

// Summarize rolls up revenue, cost, profit, and ROI across a pallet's
// items and its already-split expense shares.
//
// A nil pallet yields zero financials but still counts the item list, so
// "pallet not yet loaded" screens degrade gracefully instead of failing.
func Summarize(pallet *domain.Pallet, items []domain.Item, expenses []domain.ExpenseShare) PalletSummary {
	var s PalletSummary
	s.TotalCount = len(items)

	for _, it := range items {
		if it.Status == domain.ItemSold && it.SalePrice != nil {
			s.SoldCount++
			s.TotalRevenue += *it.SalePrice
			continue
		}
		s.UnsoldCount++
		switch {
		case it.ListingPrice != nil:
			s.UnsoldValue += *it.ListingPrice
		case it.RetailPrice != nil:
			s.UnsoldValue += *it.RetailPrice
		}
	}

	if pallet == nil {
		return PalletSummary{
			SoldCount:   s.SoldCount,
			UnsoldCount: s.UnsoldCount,
			TotalCount:  s.TotalCount,
		}
	}

	s.TotalCost = PalletAcquisitionCost(pallet.PurchaseCost, pallet.SalesTax)
	for _, e := range expenses {
		s.TotalCost += e.Amount
	}

	s.NetProfit = s.TotalRevenue - s.TotalCost
	s.ROI = ROI(s.NetProfit, s.TotalCost)

	return s
}

// SplitShares converts an expense into equal per-pallet shares. An expense
// with no linked pallets produces no shares.
func SplitShares(e domain.Expense) []domain.ExpenseShare {
	if len(e.PalletIDs) == 0 {
		return nil
	}

	share := e.Amount / float64(len(e.PalletIDs))
	shares := make([]domain.ExpenseShare, 0, len(e.PalletIDs))
	for range e.PalletIDs {
		shares = append(shares, domain.ExpenseShare{
			ExpenseID: e.ID,
			Category:  e.Category,
			Amount:    share,
			Date:      e.Date,
		})
	}
	return shares
}
