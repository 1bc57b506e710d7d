package items

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// AllocationProvider computes the current pallet cost split. Implemented by
// the pallets service; defined here to avoid an import cycle.
type AllocationProvider interface {
	Allocation(palletID string) (profit.Allocation, error)
}

// FeeScheduleProvider resolves the marketplace fee schedule. Implemented by
// the settings service.
type FeeScheduleProvider interface {
	FeeSchedule() (profit.FeeSchedule, error)
}

// Service orchestrates item operations: effective-cost resolution, profit
// figures, and sale recording with automatic fee computation.
type Service struct {
	repo  *Repository
	alloc AllocationProvider
	fees  FeeScheduleProvider
	log   zerolog.Logger
}

// NewService creates a new item service
func NewService(repo *Repository, alloc AllocationProvider, fees FeeScheduleProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:  repo,
		alloc: alloc,
		fees:  fees,
		log:   log.With().Str("service", "items").Logger(),
	}
}

// Economics is the per-item financial view served to detail screens.
type Economics struct {
	ItemID        string            `json:"item_id"`
	EffectiveCost float64           `json:"effective_cost"`
	CostSource    profit.CostSource `json:"cost_source"`
	Profit        float64           `json:"profit"`
	ROI           float64           `json:"roi"`
	ROIBand       profit.Band       `json:"roi_band"`
	ProfitBand    profit.Band       `json:"profit_band"`
	Estimated     bool              `json:"estimated"` // true when no sale price exists yet
}

// Economics resolves an item's effective cost through the precedence chain
// and computes its realized (or listing-price-estimated) profit and ROI.
func (s *Service) Economics(itemID string) (Economics, error) {
	item, err := s.repo.GetByID(itemID)
	if err != nil {
		return Economics{}, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return Economics{}, fmt.Errorf("item %s not found", itemID)
	}

	var estimate *float64
	if item.PalletID != nil {
		alloc, err := s.alloc.Allocation(*item.PalletID)
		if err != nil {
			return Economics{}, fmt.Errorf("failed to compute pallet allocation: %w", err)
		}
		if cost, ok := alloc.Costs[item.ID]; ok {
			estimate = &cost
		}
	}

	cost, source := profit.EffectiveCost(*item, estimate)

	price := item.SalePrice
	estimated := false
	if price == nil {
		price = item.ListingPrice
		estimated = true
	}

	econ := profit.ItemProfit(price, cost, item.PlatformFee, item.ShippingCost)

	return Economics{
		ItemID:        item.ID,
		EffectiveCost: cost,
		CostSource:    source,
		Profit:        econ.Profit,
		ROI:           econ.ROI,
		ROIBand:       profit.ROIBand(econ.ROI),
		ProfitBand:    profit.ProfitBand(econ.Profit),
		Estimated:     estimated,
	}, nil
}

// SaleRequest records a completed sale.
type SaleRequest struct {
	SalePrice    float64            `json:"sale_price"`
	Platform     domain.Marketplace `json:"platform"`
	Shipped      bool               `json:"shipped"`
	SaleDate     *time.Time         `json:"sale_date"`
	PlatformFee  *float64           `json:"platform_fee"`  // Manual override; required for the manual marketplace
	ShippingCost *float64           `json:"shipping_cost"` // Defaults to zero
}

// RecordSale marks an item sold. When no fee override is supplied the fee
// comes from the settings-driven schedule. The item's effective cost is
// frozen into allocated_cost at sale time so later pallet changes don't
// rewrite history.
func (s *Service) RecordSale(itemID string, req SaleRequest) (*domain.Item, error) {
	if req.SalePrice < 0 {
		return nil, fmt.Errorf("sale_price must be >= 0")
	}

	item, err := s.repo.GetByID(itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s not found", itemID)
	}

	fee := req.PlatformFee
	if fee == nil {
		schedule, err := s.fees.FeeSchedule()
		if err != nil {
			return nil, fmt.Errorf("failed to load fee schedule: %w", err)
		}
		computed := schedule.Fee(req.Platform, req.SalePrice, req.Shipped)
		fee = &computed
	}

	if item.AllocatedCost == nil && item.PalletID != nil {
		alloc, err := s.alloc.Allocation(*item.PalletID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute pallet allocation: %w", err)
		}
		if cost, ok := alloc.Costs[item.ID]; ok {
			item.AllocatedCost = &cost
		}
	}

	saleDate := time.Now().UTC()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	item.Status = domain.ItemSold
	item.SalePrice = &req.SalePrice
	item.SaleDate = &saleDate
	item.Platform = &req.Platform
	item.PlatformFee = fee
	item.ShippingCost = req.ShippingCost

	if err := s.repo.Update(*item); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	s.log.Info().
		Str("item", item.ID).
		Float64("sale_price", req.SalePrice).
		Str("platform", string(req.Platform)).
		Float64("platform_fee", *fee).
		Msg("Sale recorded")

	return item, nil
}
