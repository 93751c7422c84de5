package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceSeat(t *testing.T) {
	tests := []struct {
		name       string
		basePrice  float64
		multiplier float64
		expected   float64
	}{
		{name: "neutral multiplier", basePrice: 500, multiplier: 1.0, expected: 500},
		{name: "surge multiplier", basePrice: 500, multiplier: 1.25, expected: 625},
		{name: "discount multiplier", basePrice: 200, multiplier: 0.8, expected: 160},
		{name: "rounds half up", basePrice: 333, multiplier: 1.0015, expected: 333.5},
		{name: "sub-cent rounds to minor unit", basePrice: 99.99, multiplier: 1.1, expected: 109.99},
		{name: "zero base", basePrice: 0, multiplier: 2.0, expected: 0},
		{name: "invalid multiplier falls back", basePrice: 100, multiplier: -3, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PriceSeat(tt.basePrice, tt.multiplier))
		})
	}
}

func TestSanitizeMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		expected   float64
	}{
		{name: "valid value passes through", multiplier: 1.25, expected: 1.25},
		{name: "zero falls back", multiplier: 0, expected: DefaultMultiplier},
		{name: "negative falls back", multiplier: -1.5, expected: DefaultMultiplier},
		{name: "NaN falls back", multiplier: math.NaN(), expected: DefaultMultiplier},
		{name: "positive infinity falls back", multiplier: math.Inf(1), expected: DefaultMultiplier},
		{name: "negative infinity falls back", multiplier: math.Inf(-1), expected: DefaultMultiplier},
		{name: "small positive passes through", multiplier: 0.1, expected: 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeMultiplier(tt.multiplier))
		})
	}
}
