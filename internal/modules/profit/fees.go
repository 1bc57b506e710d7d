package profit

import (
	"github.com/shopspring/decimal"

	"github.com/palletpulse/palletpulse/internal/domain"
)

// FeeRate holds a marketplace's commission percentages. Shipped differs
// from Local only for marketplaces that charge extra when the item ships
// instead of being picked up.
type FeeRate struct {
	Local   float64 `json:"local"`
	Shipped float64 `json:"shipped"`
}

// FeeSchedule maps marketplaces to their fee rates. The runtime schedule
// comes from the settings store; DefaultFeeRates only seeds it.
type FeeSchedule map[domain.Marketplace]FeeRate

// DefaultFeeRates are the seed rates, in percent of sale price.
var DefaultFeeRates = FeeSchedule{
	domain.MarketplaceEBay:     {Local: 13.25, Shipped: 13.25},
	domain.MarketplaceFacebook: {Local: 0, Shipped: 5},
	domain.MarketplaceMercari:  {Local: 10, Shipped: 10},
	domain.MarketplaceOfferUp:  {Local: 0, Shipped: 12.9},
	domain.MarketplacePoshmark: {Local: 20, Shipped: 20},
	domain.MarketplaceManual:   {Local: 0, Shipped: 0},
}

// Fee computes the platform fee for a sale, rounded to the cent. The
// manual marketplace (and any marketplace missing from the schedule)
// yields zero, signaling the caller to accept a user-entered override.
func (s FeeSchedule) Fee(m domain.Marketplace, salePrice float64, shipped bool) float64 {
	if m == domain.MarketplaceManual {
		return 0
	}

	rate, ok := s[m]
	if !ok {
		return 0
	}

	pct := rate.Local
	if shipped {
		pct = rate.Shipped
	}

	fee := decimal.NewFromFloat(salePrice).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	f, _ := fee.Float64()
	return f
}

// Rate returns the schedule's rate for a marketplace, falling back to the
// defaults when the marketplace has no entry.
func (s FeeSchedule) Rate(m domain.Marketplace) FeeRate {
	if rate, ok := s[m]; ok {
		return rate
	}
	return DefaultFeeRates[m]
}
