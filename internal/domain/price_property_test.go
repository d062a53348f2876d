package domain

import (
	"strconv"
	"testing"

	"pgregory.net/rapid"
)

func TestProperty_TickRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Any tick count in a realistic price range must survive the
		// ticks → float → ticks round trip exactly.
		ticks := rapid.Int64Range(1, 99_999_999_99).Draw(t, "ticks")

		price := TicksToPrice(ticks)
		gotTicks, err := PriceToTicks(price)
		if err != nil {
			t.Fatalf("PriceToTicks(%v) returned error for value derived from %d ticks: %v", price, ticks, err)
		}
		if gotTicks != ticks {
			t.Fatalf("round-trip failed: ticks=%d → price=%v → ticks=%d", ticks, price, gotTicks)
		}
	})
}

func TestProperty_FormatTicksRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Int64Range(0, 99_999_999_99).Draw(t, "ticks")

		formatted := FormatTicks(ticks)
		parsed, err := strconv.ParseFloat(formatted, 64)
		if err != nil {
			t.Fatalf("FormatTicks(%d) = %q is not a parseable number: %v", ticks, formatted, err)
		}
		gotTicks, err := PriceToTicks(parsed)
		if err != nil {
			t.Fatalf("PriceToTicks(%v) rejected formatted value %q: %v", parsed, formatted, err)
		}
		if gotTicks != ticks {
			t.Fatalf("round-trip failed: ticks=%d → %q → ticks=%d", ticks, formatted, gotTicks)
		}
	})
}
