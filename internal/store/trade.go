package store

import (
	"sync"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
)

// TradeStore is the trade tape: a thread-safe, append-only, chronological
// record of every execution produced by the matching engine.
type TradeStore struct {
	mu     sync.RWMutex
	trades []*domain.Trade
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{}
}

// Append adds a trade to the tape.
func (s *TradeStore) Append(t *domain.Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trades = append(s.trades, t)
}

// All returns every trade in chronological order. Returns an empty slice
// when no trades exist.
func (s *TradeStore) All() []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.Trade, len(s.trades))
	copy(result, s.trades)
	return result
}

// Recent returns up to n trades from the tail of the tape, newest first.
// n <= 0 yields an empty slice.
func (s *TradeStore) Recent(n int) []*domain.Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []*domain.Trade{}
	}
	if n > len(s.trades) {
		n = len(s.trades)
	}
	result := make([]*domain.Trade, 0, n)
	for i := len(s.trades) - 1; i >= len(s.trades)-n; i-- {
		result = append(result, s.trades[i])
	}
	return result
}

// Len returns the number of trades on the tape.
func (s *TradeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.trades)
}
