package engine

import (
	"sync"

	"github.com/google/btree"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
)

// BookEntry represents a single order resting on the book.
type BookEntry struct {
	Price    int64
	Sequence uint64
	OrderID  string
	Order    *domain.Order
}

// PriceLevel represents an aggregated price level in the order book.
type PriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// bidLess defines ordering for the bid side: price descending, then
// sequence ascending. This means Min() returns the best bid (highest
// price, earliest arrival).
func bidLess(a, b BookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return a.Sequence < b.Sequence
}

// askLess defines ordering for the ask side: price ascending, then
// sequence ascending. Min() returns the best ask (lowest price,
// earliest arrival).
func askLess(a, b BookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return a.Sequence < b.Sequence
}

// OrderBook maintains the bid and ask sides for a single instrument using
// B-trees with a secondary index for O(log n) removal by order ID.
//
// Time priority comes from a book-owned monotonic sequence counter assigned
// at insertion. Wall-clock time is never used as an ordering key: it cannot
// disambiguate same-instant arrivals.
type OrderBook struct {
	mu    sync.RWMutex
	seq   uint64
	bids  *btree.BTreeG[BookEntry]
	asks  *btree.BTreeG[BookEntry]
	index map[string]BookEntry // order_id → entry
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	const degree = 32
	return &OrderBook{
		bids:  btree.NewG[BookEntry](degree, bidLess),
		asks:  btree.NewG[BookEntry](degree, askLess),
		index: make(map[string]BookEntry),
	}
}

// RLock acquires the read lock on the order book.
func (ob *OrderBook) RLock() {
	ob.mu.RLock()
}

// RUnlock releases the read lock on the order book.
func (ob *OrderBook) RUnlock() {
	ob.mu.RUnlock()
}

// nextSequence returns the next value of the book's monotonic counter.
// Values are never reused across the book's lifetime.
func (ob *OrderBook) nextSequence() uint64 {
	ob.seq++
	return ob.seq
}

// Rest places an order on its own side of the book, assigning the order's
// sequence number. The caller has already consumed all crossable liquidity,
// so no matching is attempted here.
func (ob *OrderBook) Rest(order *domain.Order) {
	entry := BookEntry{
		Price:    order.Price,
		Sequence: ob.nextSequence(),
		OrderID:  order.OrderID,
		Order:    order,
	}
	order.Sequence = entry.Sequence
	if order.IsBuy() {
		ob.bids.ReplaceOrInsert(entry)
	} else {
		ob.asks.ReplaceOrInsert(entry)
	}
	ob.index[entry.OrderID] = entry
}

// Remove deletes an order from the book by order ID using the
// secondary index. It is a no-op for unknown IDs.
func (ob *OrderBook) Remove(orderID string) {
	entry, ok := ob.index[orderID]
	if !ok {
		return
	}
	delete(ob.index, orderID)
	if entry.Order.IsBuy() {
		ob.bids.Delete(entry)
	} else {
		ob.asks.Delete(entry)
	}
}

// Contains reports whether an order currently rests on the book.
func (ob *OrderBook) Contains(orderID string) bool {
	_, ok := ob.index[orderID]
	return ok
}

// BestBid returns the highest-priority bid (highest price, earliest arrival).
func (ob *OrderBook) BestBid() (BookEntry, bool) {
	return ob.bids.Min()
}

// BestAsk returns the highest-priority ask (lowest price, earliest arrival).
func (ob *OrderBook) BestAsk() (BookEntry, bool) {
	return ob.asks.Min()
}

// TopBids returns up to n aggregated price levels from the bid side,
// ordered by price descending. n <= 0 returns all levels.
func (ob *OrderBook) TopBids(n int) []PriceLevel {
	return topLevels(ob.bids, n)
}

// TopAsks returns up to n aggregated price levels from the ask side,
// ordered by price ascending. n <= 0 returns all levels.
func (ob *OrderBook) TopAsks(n int) []PriceLevel {
	return topLevels(ob.asks, n)
}

// topLevels iterates the B-tree in order and aggregates entries into
// at most n price levels. Levels exist only as the set of resting
// entries at a price, so an empty level can never be reported.
func topLevels(tree *btree.BTreeG[BookEntry], n int) []PriceLevel {
	levels := []PriceLevel{}
	tree.Ascend(func(entry BookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Order.RemainingQuantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if n > 0 && len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Order.RemainingQuantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// WalkAsks iterates asks in order (lowest price first). The callback
// returns true to continue, false to stop. Used for quote simulation.
func (ob *OrderBook) WalkAsks(fn func(BookEntry) bool) {
	ob.asks.Ascend(fn)
}

// WalkBids iterates bids in order (highest price first). The callback
// returns true to continue, false to stop. Used for quote simulation.
func (ob *OrderBook) WalkBids(fn func(BookEntry) bool) {
	ob.bids.Ascend(fn)
}

// BidCount returns the number of individual bid orders on the book.
func (ob *OrderBook) BidCount() int {
	return ob.bids.Len()
}

// AskCount returns the number of individual ask orders on the book.
func (ob *OrderBook) AskCount() int {
	return ob.asks.Len()
}
