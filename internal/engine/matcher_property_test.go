package engine

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
)

func TestProperty_PriceCompatibilityDeterminesMatching(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bidPrice := rapid.Int64Range(1, 10000).Draw(t, "bidPrice")
		askPrice := rapid.Int64Range(1, 10000).Draw(t, "askPrice")
		qty := rapid.Int64Range(1, 100).Draw(t, "qty")

		m, _, _ := newTestMatcher()

		// Place the ask on the book first, then submit the bid.
		if _, _, err := m.Submit(SubmitRequest{OrderID: "ask", Side: domain.SideSell, Price: askPrice, Quantity: qty}); err != nil {
			t.Fatalf("failed to place ask: %v", err)
		}
		_, trades, err := m.Submit(SubmitRequest{OrderID: "bid", Side: domain.SideBuy, Price: bidPrice, Quantity: qty})
		if err != nil {
			t.Fatalf("failed to place bid: %v", err)
		}

		shouldMatch := bidPrice >= askPrice

		if shouldMatch && len(trades) == 0 {
			t.Fatalf("expected trade when bid=%d >= ask=%d, but got none", bidPrice, askPrice)
		}
		if !shouldMatch && len(trades) != 0 {
			t.Fatalf("expected no trade when bid=%d < ask=%d, but got %d trades", bidPrice, askPrice, len(trades))
		}
	})
}

func TestProperty_FillsInSequenceOrderAtSamePrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		price := rapid.Int64Range(1, 10000).Draw(t, "price")
		numMakers := rapid.IntRange(1, 10).Draw(t, "numMakers")

		m, _, _ := newTestMatcher()

		var totalResting int64
		for i := 0; i < numMakers; i++ {
			qty := rapid.Int64Range(1, 50).Draw(t, fmt.Sprintf("qty%d", i))
			totalResting += qty
			id := fmt.Sprintf("maker-%d", i)
			if _, _, err := m.Submit(SubmitRequest{OrderID: id, Side: domain.SideSell, Price: price, Quantity: qty}); err != nil {
				t.Fatalf("failed to place %s: %v", id, err)
			}
		}

		takerQty := rapid.Int64Range(1, totalResting).Draw(t, "takerQty")
		_, trades, err := m.Submit(SubmitRequest{OrderID: "taker", Side: domain.SideBuy, Price: price, Quantity: takerQty})
		if err != nil {
			t.Fatalf("failed to place taker: %v", err)
		}

		// Fills must consume makers strictly in submission order: the
		// maker index in consecutive trades never decreases, and no
		// maker is skipped.
		lastMaker := -1
		for i, tr := range trades {
			var makerIdx int
			if _, err := fmt.Sscanf(tr.MakerOrderID, "maker-%d", &makerIdx); err != nil {
				t.Fatalf("trade[%d]: unexpected maker id %q", i, tr.MakerOrderID)
			}
			if makerIdx != lastMaker+1 {
				t.Fatalf("trade[%d]: maker %d filled after maker %d — time priority violated", i, makerIdx, lastMaker)
			}
			lastMaker = makerIdx
		}
	})
}

func TestProperty_ConservationOfQuantity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOrders := rapid.IntRange(1, 40).Draw(t, "numOrders")

		m, orders, tape := newTestMatcher()

		var submitted []string
		for i := 0; i < numOrders; i++ {
			id := fmt.Sprintf("o-%d", i)
			side := domain.SideSell
			if rapid.Bool().Draw(t, fmt.Sprintf("buy%d", i)) {
				side = domain.SideBuy
			}
			price := rapid.Int64Range(90, 110).Draw(t, fmt.Sprintf("price%d", i))
			qty := rapid.Int64Range(1, 100).Draw(t, fmt.Sprintf("qty%d", i))

			if _, _, err := m.Submit(SubmitRequest{OrderID: id, Side: side, Price: price, Quantity: qty}); err != nil {
				t.Fatalf("failed to place %s: %v", id, err)
			}
			submitted = append(submitted, id)
		}

		// Per-order conservation: filled + remaining == original quantity,
		// and the order's trades sum to its filled quantity.
		var totalFilled int64
		for _, id := range submitted {
			o, err := orders.Get(id)
			if err != nil {
				t.Fatalf("order %s missing from store: %v", id, err)
			}
			if o.FilledQuantity+o.RemainingQuantity != o.Quantity {
				t.Fatalf("order %s: filled %d + remaining %d != quantity %d", id, o.FilledQuantity, o.RemainingQuantity, o.Quantity)
			}
			var sum int64
			for _, tr := range o.Trades {
				sum += tr.Quantity
			}
			if sum != o.FilledQuantity {
				t.Fatalf("order %s: trades sum %d != filled %d", id, sum, o.FilledQuantity)
			}
			totalFilled += o.FilledQuantity
		}

		// Every trade fills exactly one taker and one maker, so total
		// filled across orders is twice the tape volume.
		var tapeVolume int64
		for _, tr := range tape.All() {
			if tr.Quantity <= 0 {
				t.Fatalf("trade %s has non-positive quantity %d", tr.TradeID, tr.Quantity)
			}
			tapeVolume += tr.Quantity
		}
		if totalFilled != 2*tapeVolume {
			t.Fatalf("total filled %d != 2 × tape volume %d", totalFilled, tapeVolume)
		}
	})
}

func TestProperty_BookNeverCrossedAndLevelsPruned(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOps := rapid.IntRange(1, 60).Draw(t, "numOps")

		m, _, _ := newTestMatcher()

		for i := 0; i < numOps; i++ {
			id := fmt.Sprintf("o-%d", i)
			side := domain.SideSell
			if rapid.Bool().Draw(t, fmt.Sprintf("buy%d", i)) {
				side = domain.SideBuy
			}
			price := rapid.Int64Range(95, 105).Draw(t, fmt.Sprintf("price%d", i))
			qty := rapid.Int64Range(1, 50).Draw(t, fmt.Sprintf("qty%d", i))

			if _, _, err := m.Submit(SubmitRequest{OrderID: id, Side: side, Price: price, Quantity: qty}); err != nil {
				t.Fatalf("failed to place %s: %v", id, err)
			}

			// Occasionally cancel a random earlier order.
			if i > 0 && rapid.Bool().Draw(t, fmt.Sprintf("cancel%d", i)) {
				victim := rapid.IntRange(0, i).Draw(t, fmt.Sprintf("victim%d", i))
				_, _ = m.Cancel(fmt.Sprintf("o-%d", victim))
			}

			// After every completed operation the book must be uncrossed.
			bestBid, hasBid := m.book.BestBid()
			bestAsk, hasAsk := m.book.BestAsk()
			if hasBid && hasAsk && bestBid.Price >= bestAsk.Price {
				t.Fatalf("book crossed after op %d: best bid %d >= best ask %d", i, bestBid.Price, bestAsk.Price)
			}

			// No level with zero aggregate quantity is ever visible.
			for _, levels := range [][]PriceLevel{m.book.TopBids(0), m.book.TopAsks(0)} {
				for _, level := range levels {
					if level.TotalQuantity <= 0 {
						t.Fatalf("level %d visible with aggregate quantity %d after op %d", level.Price, level.TotalQuantity, i)
					}
					if level.OrderCount <= 0 {
						t.Fatalf("level %d visible with %d orders after op %d", level.Price, level.OrderCount, i)
					}
				}
			}
		}
	})
}

func TestProperty_SnapshotIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numOrders := rapid.IntRange(0, 30).Draw(t, "numOrders")

		m, _, _ := newTestMatcher()

		for i := 0; i < numOrders; i++ {
			id := fmt.Sprintf("o-%d", i)
			side := domain.SideSell
			if rapid.Bool().Draw(t, fmt.Sprintf("buy%d", i)) {
				side = domain.SideBuy
			}
			price := rapid.Int64Range(90, 110).Draw(t, fmt.Sprintf("price%d", i))
			qty := rapid.Int64Range(1, 50).Draw(t, fmt.Sprintf("qty%d", i))
			if _, _, err := m.Submit(SubmitRequest{OrderID: id, Side: side, Price: price, Quantity: qty}); err != nil {
				t.Fatalf("failed to place %s: %v", id, err)
			}
		}

		bids1, asks1 := m.book.TopBids(0), m.book.TopAsks(0)
		bids2, asks2 := m.book.TopBids(0), m.book.TopAsks(0)

		if !reflect.DeepEqual(bids1, bids2) {
			t.Fatalf("bid snapshot not idempotent: %+v vs %+v", bids1, bids2)
		}
		if !reflect.DeepEqual(asks1, asks2) {
			t.Fatalf("ask snapshot not idempotent: %+v vs %+v", asks1, asks2)
		}
	})
}
