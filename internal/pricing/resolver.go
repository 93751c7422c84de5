// Package pricing computes seat prices from section base prices and a
// demand multiplier supplied by an external estimation service.
package pricing

import "math"

// DefaultMultiplier is the demand multiplier applied when the estimation
// service is unavailable or returns an invalid value.
const DefaultMultiplier = 1.0

// PriceSeat returns the price to charge for a seat: base price scaled by the
// demand multiplier, rounded half-up to the currency's minor unit. Pure
// function; the multiplier is supplied by the caller so pricing stays
// testable in isolation.
func PriceSeat(basePrice, multiplier float64) float64 {
	return math.Floor(basePrice*SanitizeMultiplier(multiplier)*100+0.5) / 100
}

// SanitizeMultiplier maps invalid multipliers (non-positive, NaN, Inf) to
// DefaultMultiplier. The fallback is part of the pricing contract, not an
// error condition.
func SanitizeMultiplier(multiplier float64) float64 {
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return DefaultMultiplier
	}
	return multiplier
}
