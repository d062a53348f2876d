package domain

import (
	"fmt"
	"math"
)

// PriceToTicks converts a float64 price in currency units to int64 ticks
// (cents). It validates that the input has at most 2 decimal places and
// returns an error if more precision is provided. Uses math.Round after
// multiplying by 100 to handle floating-point representation issues; ticks
// are the only representation the engine ever compares or keys on.
func PriceToTicks(f float64) (int64, error) {
	// Multiply by 1000 to check for a third decimal place.
	// Round to avoid floating-point artifacts (e.g., 1.10 * 1000 = 1099.9999...).
	scaled := math.Round(f * 1000)
	if math.Mod(scaled, 10) != 0 {
		return 0, fmt.Errorf("prices must have at most 2 decimal places")
	}

	ticks := math.Round(f * 100)
	return int64(ticks), nil
}

// TicksToPrice converts an int64 tick value back to a float64 price.
// Display only — never feed the result back into the engine.
func TicksToPrice(t int64) float64 {
	return float64(t) / 100.0
}

// FormatTicks renders a tick value as a fixed two-decimal price string.
func FormatTicks(t int64) string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d.%02d", sign, t/100, t%100)
}
