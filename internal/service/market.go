package service

import (
	"fmt"
	"time"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/engine"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/store"
)

// PriceResponse represents the response for GET /market/price.
type PriceResponse struct {
	CurrentPrice   *int64     // nil when no trades ever
	Window         string     // e.g. "5m"
	TradesInWindow int
	LastTradeAt    *time.Time // nil when no trades ever
}

// BookPriceLevel represents an aggregated price level in the book response.
type BookPriceLevel struct {
	Price         int64
	TotalQuantity int64
	OrderCount    int
}

// BookResponse represents the response for GET /market/book.
type BookResponse struct {
	Bids       []BookPriceLevel
	Asks       []BookPriceLevel
	Spread     *int64 // nil if either side empty
	SnapshotAt time.Time
}

// QuotePriceLevel represents a single price level in the quote response.
type QuotePriceLevel struct {
	Price    int64
	Quantity int64
}

// QuoteResponse represents the response for GET /market/quote.
type QuoteResponse struct {
	Side              domain.Side
	QuantityRequested int64
	QuantityAvailable int64
	FullyFillable     bool
	EstimatedAvgPrice *int64 // nil when no liquidity
	EstimatedTotal    *int64 // nil when no liquidity
	PriceLevels       []QuotePriceLevel
	QuotedAt          time.Time
}

// MarketService handles reference price, book snapshot, trade tape, and
// quote queries. Everything here is a read-only projection of engine
// state: no method mutates the book.
type MarketService struct {
	tradeStore *store.TradeStore
	book       *engine.OrderBook
	matcher    *engine.Matcher
	vwapWindow time.Duration
	maxDepth   int
}

// NewMarketService creates a new MarketService with the given dependencies.
func NewMarketService(
	tradeStore *store.TradeStore,
	book *engine.OrderBook,
	matcher *engine.Matcher,
	vwapWindow time.Duration,
	maxDepth int,
) *MarketService {
	return &MarketService{
		tradeStore: tradeStore,
		book:       book,
		matcher:    matcher,
		vwapWindow: vwapWindow,
		maxDepth:   maxDepth,
	}
}

// Price returns the current reference price, computed as VWAP over the
// configured time window. Falls back to the last trade's price if no
// trades exist in the window. Returns a nil price if no trades have ever
// occurred.
func (s *MarketService) Price() *PriceResponse {
	trades := s.tradeStore.All()
	now := time.Now()
	windowStart := now.Add(-s.vwapWindow)

	resp := &PriceResponse{
		Window: formatDuration(s.vwapWindow),
	}

	if len(trades) == 0 {
		return resp
	}

	lastTrade := trades[len(trades)-1]
	resp.LastTradeAt = &lastTrade.ExecutedAt

	// Compute VWAP: iterate backwards from the tail until executed_at
	// falls outside the window.
	var sumPriceQty int64
	var sumQty int64
	var tradesInWindow int

	for i := len(trades) - 1; i >= 0; i-- {
		t := trades[i]
		if t.ExecutedAt.Before(windowStart) {
			break
		}
		sumPriceQty += t.Price * t.Quantity
		sumQty += t.Quantity
		tradesInWindow++
	}

	resp.TradesInWindow = tradesInWindow

	if sumQty > 0 {
		vwap := sumPriceQty / sumQty
		resp.CurrentPrice = &vwap
	} else {
		// No trades in window — fall back to the last trade's price.
		resp.CurrentPrice = &lastTrade.Price
	}

	return resp
}

// Book returns the top N price levels of each side of the order book.
// depth <= 0 uses the configured maximum.
func (s *MarketService) Book(depth int) (*BookResponse, error) {
	if depth <= 0 {
		depth = s.maxDepth
	}
	if depth > s.maxDepth {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("depth must be between 1 and %d", s.maxDepth),
		}
	}

	s.book.RLock()
	defer s.book.RUnlock()

	topBids := s.book.TopBids(depth)
	topAsks := s.book.TopAsks(depth)

	bids := make([]BookPriceLevel, len(topBids))
	for i, pl := range topBids {
		bids[i] = BookPriceLevel{
			Price:         pl.Price,
			TotalQuantity: pl.TotalQuantity,
			OrderCount:    pl.OrderCount,
		}
	}

	asks := make([]BookPriceLevel, len(topAsks))
	for i, pl := range topAsks {
		asks[i] = BookPriceLevel{
			Price:         pl.Price,
			TotalQuantity: pl.TotalQuantity,
			OrderCount:    pl.OrderCount,
		}
	}

	resp := &BookResponse{
		Bids:       bids,
		Asks:       asks,
		SnapshotAt: time.Now(),
	}

	// Spread = best_ask - best_bid (nil if either side empty).
	if len(topBids) > 0 && len(topAsks) > 0 {
		spread := topAsks[0].Price - topBids[0].Price
		resp.Spread = &spread
	}

	return resp, nil
}

// Quote simulates a fill against the current book and returns the
// estimated result without placing an order.
func (s *MarketService) Quote(side domain.Side, quantity int64) (*QuoteResponse, error) {
	if side != domain.SideBuy && side != domain.SideSell {
		return nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if quantity <= 0 {
		return nil, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}

	result := s.matcher.Quote(side, quantity)

	levels := make([]QuotePriceLevel, len(result.PriceLevels))
	for i, pl := range result.PriceLevels {
		levels[i] = QuotePriceLevel{Price: pl.Price, Quantity: pl.Quantity}
	}

	return &QuoteResponse{
		Side:              side,
		QuantityRequested: quantity,
		QuantityAvailable: result.QuantityAvailable,
		FullyFillable:     result.FullyFillable,
		EstimatedAvgPrice: result.EstimatedAvgPrice,
		EstimatedTotal:    result.EstimatedTotal,
		PriceLevels:       levels,
		QuotedAt:          time.Now(),
	}, nil
}

// Trades returns up to limit trades from the tape, newest first.
func (s *MarketService) Trades(limit int) ([]*domain.Trade, error) {
	if limit < 1 || limit > 1000 {
		return nil, &domain.ValidationError{
			Message: "limit must be between 1 and 1000",
		}
	}
	return s.tradeStore.Recent(limit), nil
}

// formatDuration renders a duration without zero-valued trailing units,
// so 5m0s reads as "5m".
func formatDuration(d time.Duration) string {
	s := d.String()
	for _, suffix := range []string{"m0s", "h0m"} {
		if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
			s = s[:len(s)-2]
		}
	}
	return s
}
