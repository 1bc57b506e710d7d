package profit

// Band is a display classification consumed by the presentation layer.
// The numeric thresholds are part of the contract: clients color figures
// off these exact band names.
type Band string

const (
	BandStrongPositive  Band = "strong_positive"
	BandPositive        Band = "positive"
	BandNeutral         Band = "neutral"
	BandSlightLoss      Band = "slight_loss"
	BandSignificantLoss Band = "significant_loss"
)

// ROIBandThreshold marks the boundary between a merely positive ROI and a
// strong one, in percent.
const ROIBandThreshold = 20.0

// ROIBand classifies an ROI percentage for display.
func ROIBand(roi float64) Band {
	switch {
	case roi > ROIBandThreshold:
		return BandStrongPositive
	case roi > 0:
		return BandPositive
	case roi == 0:
		return BandNeutral
	case roi > -ROIBandThreshold:
		return BandSlightLoss
	default:
		return BandSignificantLoss
	}
}

// ProfitBand classifies a raw profit figure for display.
func ProfitBand(profit float64) Band {
	switch {
	case profit > 0:
		return BandPositive
	case profit == 0:
		return BandNeutral
	default:
		return BandSlightLoss
	}
}
