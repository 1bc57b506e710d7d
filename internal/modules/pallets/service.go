package pallets

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/palletpulse/palletpulse/internal/domain"
	"github.com/palletpulse/palletpulse/internal/modules/profit"
)

// ErrPalletLimit is returned when the free tier's pallet cap is reached.
var ErrPalletLimit = errors.New("pallet limit reached for the current subscription tier")

// LimitSettingKey is the settings key holding the free-tier pallet cap.
const LimitSettingKey = "free_tier_pallet_limit"

// ItemProvider defines the contract for item lookups needed by pallets.
// Defined here to avoid an import cycle with the items module.
type ItemProvider interface {
	ListByPallet(palletID string) ([]domain.Item, error)
}

// ExpenseShareProvider resolves a pallet's already-split expense shares.
type ExpenseShareProvider interface {
	SharesForPallet(palletID string) ([]domain.ExpenseShare, error)
}

// PolicyProvider resolves the configured cost-allocation policy and the
// free-tier pallet cap. Implemented by the settings service.
type PolicyProvider interface {
	AllocationPolicy() (profit.AllocationPolicy, error)
	GetFloat(key string) (float64, error)
}

// QuotaProvider reports whether the pallet cap applies. Implemented by the
// subscriptions service.
type QuotaProvider interface {
	UnlimitedPallets() (bool, error)
}

// Service orchestrates pallet operations and financial rollups. All
// arithmetic lives in the profit package; this service only assembles the
// snapshot (pallet, items, expense shares) and passes it in.
type Service struct {
	repo     *Repository
	items    ItemProvider
	expenses ExpenseShareProvider
	policy   PolicyProvider
	quota    QuotaProvider
	log      zerolog.Logger
}

// NewService creates a new pallet service
func NewService(repo *Repository, items ItemProvider, expenses ExpenseShareProvider, policy PolicyProvider, quota QuotaProvider, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		items:    items,
		expenses: expenses,
		policy:   policy,
		quota:    quota,
		log:      log.With().Str("service", "pallets").Logger(),
	}
}

// Create inserts a pallet after enforcing the tier quota: free accounts are
// capped at the configured pallet count, pro accounts are not.
func (s *Service) Create(p domain.Pallet) (domain.Pallet, error) {
	unlimited, err := s.quota.UnlimitedPallets()
	if err != nil {
		return domain.Pallet{}, fmt.Errorf("failed to check pallet quota: %w", err)
	}

	if !unlimited {
		count, err := s.repo.Count()
		if err != nil {
			return domain.Pallet{}, fmt.Errorf("failed to count pallets: %w", err)
		}
		limit, err := s.policy.GetFloat(LimitSettingKey)
		if err != nil {
			return domain.Pallet{}, fmt.Errorf("failed to resolve pallet limit: %w", err)
		}
		if limit > 0 && float64(count) >= limit {
			return domain.Pallet{}, ErrPalletLimit
		}
	}

	return s.repo.Create(p)
}

// Summary computes the full financial rollup for one pallet.
func (s *Service) Summary(palletID string) (profit.PalletSummary, error) {
	pallet, err := s.repo.GetByID(palletID)
	if err != nil {
		return profit.PalletSummary{}, fmt.Errorf("failed to get pallet: %w", err)
	}

	items, err := s.items.ListByPallet(palletID)
	if err != nil {
		return profit.PalletSummary{}, fmt.Errorf("failed to get items: %w", err)
	}

	var shares []domain.ExpenseShare
	if pallet != nil {
		shares, err = s.expenses.SharesForPallet(palletID)
		if err != nil {
			return profit.PalletSummary{}, fmt.Errorf("failed to get expense shares: %w", err)
		}
	}

	return profit.Summarize(pallet, items, shares), nil
}

// Allocation computes the current cost split for a pallet's items under
// the configured policy. Used both for the pre-persist estimate display
// and to resolve effective costs for item-level profit.
func (s *Service) Allocation(palletID string) (profit.Allocation, error) {
	pallet, err := s.repo.GetByID(palletID)
	if err != nil {
		return profit.Allocation{}, fmt.Errorf("failed to get pallet: %w", err)
	}
	if pallet == nil {
		return profit.Allocation{}, fmt.Errorf("pallet %s not found", palletID)
	}

	items, err := s.items.ListByPallet(palletID)
	if err != nil {
		return profit.Allocation{}, fmt.Errorf("failed to get items: %w", err)
	}

	policy, err := s.policy.AllocationPolicy()
	if err != nil {
		return profit.Allocation{}, fmt.Errorf("failed to resolve allocation policy: %w", err)
	}

	return profit.AllocateCost(pallet.PurchaseCost, pallet.SalesTax, items, policy), nil
}
