// Package analytics computes cross-pallet statistics for the pro tier:
// ROI distributions, expense breakdowns, and monthly profit series.
package analytics

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// PalletLister lists pallets. Implemented by the pallets repository.
type PalletLister interface {
	GetAll() ([]domain.Pallet, error)
}

// SummaryProvider computes one pallet's financial rollup. Implemented by
// the pallets service.
type SummaryProvider interface {
	Summary(palletID string) (profit.PalletSummary, error)
}

// ItemLister lists items by status. Implemented by the items repository.
type ItemLister interface {
	ListByStatus(status domain.ItemStatus) ([]domain.Item, error)
}

// ExpenseLister lists expenses. Implemented by the expenses repository.
type ExpenseLister interface {
	GetAll() ([]domain.Expense, error)
}

// Service computes aggregate statistics across the whole operation.
type Service struct {
	pallets   PalletLister
	summaries SummaryProvider
	items     ItemLister
	expenses  ExpenseLister
	log       zerolog.Logger
}

// NewService creates a new analytics service
func NewService(pallets PalletLister, summaries SummaryProvider, items ItemLister, expenses ExpenseLister, log zerolog.Logger) *Service {
	return &Service{
		pallets:   pallets,
		summaries: summaries,
		items:     items,
		expenses:  expenses,
		log:       log.With().Str("service", "analytics").Logger(),
	}
}

// PalletStanding is one pallet's position in the ROI ranking.
type PalletStanding struct {
	PalletID string  `json:"pallet_id"`
	Name     string  `json:"name"`
	ROI      float64 `json:"roi"`
	Profit   float64 `json:"profit"`
}

// Overview is the cross-pallet statistics payload.
type Overview struct {
	PalletCount int     `json:"pallet_count"`
	MeanROI     float64 `json:"mean_roi"`
	MedianROI   float64 `json:"median_roi"`
	StdDevROI   float64 `json:"stddev_roi"`
	TotalProfit float64 `json:"total_profit"`

	Best  *PalletStanding `json:"best_pallet"`
	Worst *PalletStanding `json:"worst_pallet"`
}

// Overview ranks every pallet by ROI and summarizes the distribution.
// Pallets with no sold items are still included; their ROI reflects sunk
// cost with zero revenue.
func (s *Service) Overview() (Overview, error) {
	all, err := s.pallets.GetAll()
	if err != nil {
		return Overview{}, fmt.Errorf("failed to list pallets: %w", err)
	}

	var (
		rois      []float64
		standings []PalletStanding
		total     float64
	)
	for _, p := range all {
		summary, err := s.summaries.Summary(p.ID)
		if err != nil {
			return Overview{}, fmt.Errorf("failed to summarize pallet %s: %w", p.ID, err)
		}
		rois = append(rois, summary.ROI)
		total += summary.NetProfit
		standings = append(standings, PalletStanding{
			PalletID: p.ID,
			Name:     p.Name,
			ROI:      summary.ROI,
			Profit:   summary.NetProfit,
		})
	}

	ov := Overview{PalletCount: len(all), TotalProfit: total}
	if len(rois) == 0 {
		return ov, nil
	}

	sorted := append([]float64(nil), rois...)
	sort.Float64s(sorted)

	ov.MeanROI = stat.Mean(rois, nil)
	ov.MedianROI = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if len(rois) > 1 {
		ov.StdDevROI = stat.StdDev(rois, nil)
	}

	sort.Slice(standings, func(i, j int) bool { return standings[i].ROI > standings[j].ROI })
	ov.Best = &standings[0]
	ov.Worst = &standings[len(standings)-1]

	return ov, nil
}

// CategoryTotal is one expense category's share of total spend.
type CategoryTotal struct {
	Category domain.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
	Count    int                    `json:"count"`
}

// ExpenseBreakdown totals expenses by category, largest first.
func (s *Service) ExpenseBreakdown() ([]CategoryTotal, error) {
	all, err := s.expenses.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	totals := make(map[domain.ExpenseCategory]*CategoryTotal)
	for _, e := range all {
		t, ok := totals[e.Category]
		if !ok {
			t = &CategoryTotal{Category: e.Category}
			totals[e.Category] = t
		}
		t.Total += e.Amount
		t.Count++
	}

	out := make([]CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out, nil
}

// MonthlyProfit is realized profit for one calendar month.
type MonthlyProfit struct {
	Month   string  `json:"month"` // YYYY-MM
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
	Sales   int     `json:"sales"`
}

// MonthlySeries buckets sold items by sale month. Profit per sale uses the
// item's frozen effective cost at sale time.
func (s *Service) MonthlySeries() ([]MonthlyProfit, error) {
	sold, err := s.items.ListByStatus(domain.ItemSold)
	if err != nil {
		return nil, fmt.Errorf("failed to list sold items: %w", err)
	}

	months := make(map[string]*MonthlyProfit)
	for _, it := range sold {
		if it.SalePrice == nil || it.SaleDate == nil {
			continue
		}

		key := it.SaleDate.UTC().Format("2006-01")
		m, ok := months[key]
		if !ok {
			m = &MonthlyProfit{Month: key}
			months[key] = m
		}

		cost, _ := profit.EffectiveCost(it, nil)
		econ := profit.ItemProfit(it.SalePrice, cost, it.PlatformFee, it.ShippingCost)

		m.Revenue += *it.SalePrice
		m.Profit += econ.Profit
		m.Sales++
	}

	out := make([]MonthlyProfit, 0, len(months))
	for _, m := range months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
