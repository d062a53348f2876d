package domain

import "time"

// Trade represents a matched execution between an incoming (taker) order
// and a resting (maker) order. The execution price is always the maker's
// price level.
type Trade struct {
	TradeID      string
	TakerOrderID string
	MakerOrderID string
	Price        int64 // ticks (cents)
	Quantity     int64
	ExecutedAt   time.Time
}
