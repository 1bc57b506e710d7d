package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestROIBand_Boundaries(t *testing.T) {
	tests := []struct {
		roi  float64
		want Band
	}{
		{25, BandStrongPositive},
		{20.01, BandStrongPositive},
		{20, BandPositive}, // exactly 20 is not "strong"
		{0.5, BandPositive},
		{0, BandNeutral},
		{-0.5, BandSlightLoss},
		{-19.99, BandSlightLoss},
		{-20, BandSignificantLoss},
		{-50, BandSignificantLoss},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ROIBand(tt.roi), "roi=%v", tt.roi)
	}
}

func TestProfitBand(t *testing.T) {
	assert.Equal(t, BandPositive, ProfitBand(0.01))
	assert.Equal(t, BandNeutral, ProfitBand(0))
	assert.Equal(t, BandSlightLoss, ProfitBand(-0.01))
}
