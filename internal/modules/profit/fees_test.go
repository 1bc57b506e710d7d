package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palletpulse/palletpulse/internal/domain"
)

func TestFeeSchedule_LocalVsShipped(t *testing.T) {
	// Facebook: 0% local, 5% shipped
	assert.Equal(t, 0.0, DefaultFeeRates.Fee(domain.MarketplaceFacebook, 200, false))
	assert.Equal(t, 10.0, DefaultFeeRates.Fee(domain.MarketplaceFacebook, 200, true))
}

func TestFeeSchedule_FlatRateMarketplace(t *testing.T) {
	// eBay charges the same rate regardless of fulfillment
	local := DefaultFeeRates.Fee(domain.MarketplaceEBay, 100, false)
	shipped := DefaultFeeRates.Fee(domain.MarketplaceEBay, 100, true)

	assert.Equal(t, 13.25, local)
	assert.Equal(t, local, shipped)
}

func TestFeeSchedule_RoundsToCent(t *testing.T) {
	// 33.33 * 12.9% = 4.299... -> 4.30
	fee := DefaultFeeRates.Fee(domain.MarketplaceOfferUp, 33.33, true)
	assert.Equal(t, 4.3, fee)

	// 9.99 * 10% = 0.999 -> 1.00
	assert.Equal(t, 1.0, DefaultFeeRates.Fee(domain.MarketplaceMercari, 9.99, false))
}

func TestFeeSchedule_ManualIsAlwaysZero(t *testing.T) {
	assert.Equal(t, 0.0, DefaultFeeRates.Fee(domain.MarketplaceManual, 500, true))
	assert.Equal(t, 0.0, DefaultFeeRates.Fee(domain.MarketplaceManual, 500, false))
}

func TestFeeSchedule_UnknownMarketplaceIsZero(t *testing.T) {
	assert.Equal(t, 0.0, FeeSchedule{}.Fee(domain.MarketplaceEBay, 100, true))
}

func TestFeeSchedule_RateFallsBackToDefaults(t *testing.T) {
	custom := FeeSchedule{
		domain.MarketplaceEBay: {Local: 12, Shipped: 12},
	}

	assert.Equal(t, FeeRate{Local: 12, Shipped: 12}, custom.Rate(domain.MarketplaceEBay))
	assert.Equal(t, DefaultFeeRates[domain.MarketplacePoshmark], custom.Rate(domain.MarketplacePoshmark))
}
