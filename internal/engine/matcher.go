package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/store"
)

// QuotePriceLevel represents a single price level in a quote simulation.
type QuotePriceLevel struct {
	Price    int64
	Quantity int64
}

// QuoteResult holds the result of a fill simulation against one side
// of the book.
type QuoteResult struct {
	QuantityAvailable int64
	FullyFillable     bool
	EstimatedAvgPrice *int64 // nil when no liquidity
	EstimatedTotal    *int64 // nil when no liquidity
	PriceLevels       []QuotePriceLevel
}

// SubmitRequest carries a validated limit order into the matching engine.
// Price is in ticks. OrderID is caller-assigned and opaque to the engine;
// the engine only requires it to be unique.
type SubmitRequest struct {
	OrderID  string
	Side     domain.Side
	Price    int64
	Quantity int64
}

// Matcher implements price-time priority matching for limit orders
// against a single order book.
type Matcher struct {
	book   *OrderBook
	orders *store.OrderStore
	trades *store.TradeStore
	logger *slog.Logger
}

// NewMatcher creates a new Matcher with the given dependencies. A nil
// logger falls back to slog.Default.
func NewMatcher(book *OrderBook, orders *store.OrderStore, trades *store.TradeStore, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		book:   book,
		orders: orders,
		trades: trades,
		logger: logger,
	}
}

// Book returns the order book owned by this matcher.
func (m *Matcher) Book() *OrderBook {
	return m.book
}

// Submit processes an incoming limit order through the matching engine.
// It rejects invalid input before any state mutation, runs the match loop
// against the opposite side of the book, records trades on the tape, and
// rests any unfilled remainder on the same side.
//
// Among resting orders at the best crossable price, the one that arrived
// first (smallest sequence number) always fills first. The returned trade
// slice is in execution order.
//
// The book's write lock is held for the entire matching pass; the loop is
// pure computation with no suspension points.
func (m *Matcher) Submit(req SubmitRequest) (*domain.Order, []*domain.Trade, error) {
	// Reject before mutating anything — the operation is atomic.
	if req.Price <= 0 {
		return nil, nil, domain.ErrInvalidPrice
	}
	if req.Quantity <= 0 {
		return nil, nil, domain.ErrInvalidQuantity
	}
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		return nil, nil, &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}

	m.book.mu.Lock()
	defer m.book.mu.Unlock()

	if m.orders.Exists(req.OrderID) {
		return nil, nil, domain.ErrDuplicateOrder
	}

	order := &domain.Order{
		OrderID:           req.OrderID,
		Side:              req.Side,
		Price:             req.Price,
		Quantity:          req.Quantity,
		RemainingQuantity: req.Quantity,
		Status:            domain.OrderStatusPending,
		CreatedAt:         time.Now(),
		Trades:            []*domain.Trade{},
	}
	m.orders.Create(order)

	executedAt := time.Now()
	var trades []*domain.Trade

	for order.RemainingQuantity > 0 {
		// Peek the best opposing entry. A buy consumes asks, a sell bids.
		var best BookEntry
		var found bool
		if order.IsBuy() {
			best, found = m.book.BestAsk()
		} else {
			best, found = m.book.BestBid()
		}
		if !found {
			break
		}

		// Crossing test. Levels are price-ordered, so the first failure
		// means no further crossing is possible.
		if order.IsBuy() {
			if order.Price < best.Price {
				break
			}
		} else {
			if best.Price < order.Price {
				break
			}
		}

		resting := best.Order

		fillQty := order.RemainingQuantity
		if resting.RemainingQuantity < fillQty {
			fillQty = resting.RemainingQuantity
		}

		order.RemainingQuantity -= fillQty
		order.FilledQuantity += fillQty
		resting.RemainingQuantity -= fillQty
		resting.FilledQuantity += fillQty

		if order.RemainingQuantity == 0 {
			order.Status = domain.OrderStatusFilled
		} else {
			order.Status = domain.OrderStatusPartiallyFilled
		}
		if resting.RemainingQuantity == 0 {
			resting.Status = domain.OrderStatusFilled
		} else {
			resting.Status = domain.OrderStatusPartiallyFilled
		}

		// Execution price is always the resting order's price level.
		trade := &domain.Trade{
			TradeID:      uuid.New().String(),
			TakerOrderID: order.OrderID,
			MakerOrderID: resting.OrderID,
			Price:        resting.Price,
			Quantity:     fillQty,
			ExecutedAt:   executedAt,
		}

		order.Trades = append(order.Trades, trade)
		resting.Trades = append(resting.Trades, trade)
		trades = append(trades, trade)
		m.trades.Append(trade)

		m.logger.Debug("trade executed",
			slog.String("trade_id", trade.TradeID),
			slog.String("taker", trade.TakerOrderID),
			slog.String("maker", trade.MakerOrderID),
			slog.Int64("price", trade.Price),
			slog.Int64("quantity", trade.Quantity),
		)

		// A fully consumed maker leaves the book; if it was the last
		// order at its price, the level disappears with it.
		if resting.RemainingQuantity == 0 {
			m.book.Remove(resting.OrderID)
		}
	}

	// Rest the remainder. By construction it cannot cross: the loop above
	// already consumed all crossable liquidity.
	if order.RemainingQuantity > 0 {
		m.book.Rest(order)
	}

	m.verifyUncrossed()

	return order, trades, nil
}

// Cancel removes a resting order from the book by ID and marks it
// cancelled. Cancellation is always for the full remaining quantity.
//
// Returns ErrOrderNotFound if the order does not exist and
// ErrOrderNotCancellable if it is in a terminal state.
func (m *Matcher) Cancel(orderID string) (*domain.Order, error) {
	order, err := m.orders.Get(orderID)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}

	m.book.mu.Lock()
	defer m.book.mu.Unlock()

	// Re-check under lock: only pending or partially filled orders
	// can be cancelled.
	switch order.Status {
	case domain.OrderStatusPending, domain.OrderStatusPartiallyFilled:
	default:
		return nil, domain.ErrOrderNotCancellable
	}

	m.book.Remove(order.OrderID)

	now := time.Now()
	order.CancelledQuantity = order.RemainingQuantity
	order.RemainingQuantity = 0
	order.Status = domain.OrderStatusCancelled
	order.CancelledAt = &now

	return order, nil
}

// Quote performs a read-only walk of the opposite side of the book to
// estimate the result of an order for the given side and quantity,
// without mutating any state. For a buy quote it walks asks (lowest
// first); for a sell quote it walks bids (highest first).
func (m *Matcher) Quote(side domain.Side, quantity int64) *QuoteResult {
	m.book.mu.RLock()
	defer m.book.mu.RUnlock()

	result := &QuoteResult{
		PriceLevels: make([]QuotePriceLevel, 0),
	}

	remaining := quantity
	var totalCost int64

	walkFn := func(entry BookEntry) bool {
		if remaining <= 0 {
			return false
		}
		fillQty := entry.Order.RemainingQuantity
		if fillQty > remaining {
			fillQty = remaining
		}
		totalCost += entry.Price * fillQty
		result.QuantityAvailable += fillQty
		remaining -= fillQty

		// Aggregate into price levels.
		if len(result.PriceLevels) > 0 && result.PriceLevels[len(result.PriceLevels)-1].Price == entry.Price {
			result.PriceLevels[len(result.PriceLevels)-1].Quantity += fillQty
		} else {
			result.PriceLevels = append(result.PriceLevels, QuotePriceLevel{
				Price:    entry.Price,
				Quantity: fillQty,
			})
		}
		return true
	}

	if side == domain.SideBuy {
		m.book.WalkAsks(walkFn)
	} else {
		m.book.WalkBids(walkFn)
	}

	if result.QuantityAvailable > 0 {
		avgPrice := totalCost / result.QuantityAvailable
		result.EstimatedAvgPrice = &avgPrice
		result.EstimatedTotal = &totalCost
	}
	result.FullyFillable = result.QuantityAvailable >= quantity

	return result
}

// verifyUncrossed checks that the book is not left in a crossed state
// after a completed operation. A crossed book here is an internal defect:
// it is logged as unexpected and left for the next submission to resolve
// rather than silently swallowed. Caller must hold the write lock.
func (m *Matcher) verifyUncrossed() {
	bestBid, hasBid := m.book.bids.Min()
	bestAsk, hasAsk := m.book.asks.Min()
	if hasBid && hasAsk && bestBid.Price >= bestAsk.Price {
		m.logger.Error("order book crossed after match",
			slog.Int64("best_bid", bestBid.Price),
			slog.Int64("best_ask", bestAsk.Price),
		)
	}
}
