package profit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemProfit_SoldItem(t *testing.T) {
	// sale 100, cost 50, fee 5, shipping 3
	econ := ItemProfit(f(100), 50, f(5), f(3))

	assert.Equal(t, 42.0, econ.Profit)
	assert.Equal(t, 84.0, econ.ROI)
}

func TestItemProfit_NilPriceYieldsZeroProfit(t *testing.T) {
	econ := ItemProfit(nil, 50, f(5), f(3))

	assert.Equal(t, 0.0, econ.Profit)
	assert.Equal(t, 0.0, econ.ROI)
}

func TestItemProfit_NilFeeAndShippingDefaultToZero(t *testing.T) {
	econ := ItemProfit(f(100), 50, nil, nil)

	assert.Equal(t, 50.0, econ.Profit)
	assert.Equal(t, 100.0, econ.ROI)
}

func TestROI_ZeroCostSentinels(t *testing.T) {
	tests := []struct {
		name   string
		profit float64
		cost   float64
		want   float64
	}{
		{"zero cost positive profit", 10, 0, ROIZeroCostProfitable},
		{"zero cost zero profit", 0, 0, ROIZeroCostFlat},
		{"zero cost negative profit", -10, 0, ROIZeroCostFlat},
		{"normal ratio", 42, 50, 84},
		{"loss", -25, 50, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ROI(tt.profit, tt.cost)
			assert.Equal(t, tt.want, got)
			assert.False(t, got != got, "ROI must never be NaN")
		})
	}
}

func TestItemProfit_Idempotent(t *testing.T) {
	first := ItemProfit(f(100), 50, f(5), f(3))
	second := ItemProfit(f(100), 50, f(5), f(3))

	assert.Equal(t, first, second)
}
