package profit

// Zero-cost ROI sentinels. When the effective cost is zero there is no
// capital at risk, so ROI cannot be a ratio: a positive profit reports as
// fully profitable, anything else as no gain. Never a division by zero,
// never NaN.
const (
	ROIZeroCostProfitable = 100.0
	ROIZeroCostFlat       = 0.0
)

// ItemEconomics is the realized (or estimated) result for a single item.
type ItemEconomics struct {
	Profit float64 `json:"profit"`
	ROI    float64 `json:"roi"`
}

// ItemProfit computes profit and ROI for one item.
//
// price is the sale price, or the listing price when estimating an unsold
// item; a nil price yields zero profit rather than an estimate. platformFee
// and shippingCost default to zero when nil.
func ItemProfit(price *float64, effectiveCost float64, platformFee, shippingCost *float64) ItemEconomics {
	if price == nil {
		return ItemEconomics{Profit: 0, ROI: ROI(0, effectiveCost)}
	}

	profit := *price - effectiveCost
	if platformFee != nil {
		profit -= *platformFee
	}
	if shippingCost != nil {
		profit -= *shippingCost
	}

	return ItemEconomics{Profit: profit, ROI: ROI(profit, effectiveCost)}
}

// ROI returns profit over cost as a percentage. Zero-cost items map to
// fixed placeholder values so they sort sanely.
func ROI(profit, cost float64) float64 {
	if cost == 0 {
		if profit > 0 {
			return ROIZeroCostProfitable
		}
		return ROIZeroCostFlat
	}
	return profit / cost * 100
}
