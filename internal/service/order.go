package service

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/engine"
	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/store"
)

var orderIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidOrderStatuses lists all valid order status values for validation.
var ValidOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderStatusPending:         true,
	domain.OrderStatusPartiallyFilled: true,
	domain.OrderStatusFilled:          true,
	domain.OrderStatusCancelled:       true,
}

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	OrderID  string // optional; generated when empty
	Side     domain.Side
	Price    *float64
	Quantity int64
}

// OrderService handles order submission, retrieval, cancellation, and
// listing. It owns request-shape validation; the matching engine below it
// enforces the engine-level invariants.
type OrderService struct {
	matcher    *engine.Matcher
	orderStore *store.OrderStore
}

// NewOrderService creates a new OrderService with the given dependencies.
func NewOrderService(matcher *engine.Matcher, orderStore *store.OrderStore) *OrderService {
	return &OrderService{
		matcher:    matcher,
		orderStore: orderStore,
	}
}

// SubmitOrder validates the request, converts the price to ticks, and runs
// the matching engine. When the caller does not supply an order ID, one is
// allocated here — the engine itself never invents identities.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (*domain.Order, error) {
	if req.Side != domain.SideBuy && req.Side != domain.SideSell {
		return nil, &domain.ValidationError{
			Message: "side must be 'buy' or 'sell'",
		}
	}
	if req.Quantity <= 0 {
		return nil, &domain.ValidationError{
			Message: "quantity must be a positive integer",
		}
	}
	if req.Price == nil {
		return nil, &domain.ValidationError{
			Message: "price is required",
		}
	}
	if *req.Price <= 0 {
		return nil, &domain.ValidationError{
			Message: "price must be greater than 0",
		}
	}
	priceTicks, err := domain.PriceToTicks(*req.Price)
	if err != nil {
		return nil, &domain.ValidationError{
			Message: "price must have at most 2 decimal places",
		}
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = uuid.New().String()
	} else if !orderIDRegex.MatchString(orderID) {
		return nil, &domain.ValidationError{
			Message: "order_id must match ^[a-zA-Z0-9_-]{1,64}$",
		}
	}

	order, _, err := s.matcher.Submit(engine.SubmitRequest{
		OrderID:  orderID,
		Side:     req.Side,
		Price:    priceTicks,
		Quantity: req.Quantity,
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrder retrieves an order by ID with all its trades.
func (s *OrderService) GetOrder(orderID string) (*domain.Order, error) {
	return s.orderStore.Get(orderID)
}

// CancelOrder cancels a pending or partially filled order.
func (s *OrderService) CancelOrder(orderID string) (*domain.Order, error) {
	return s.matcher.Cancel(orderID)
}

// ListOrders returns a paginated list of orders with optional status
// filtering, newest first.
func (s *OrderService) ListOrders(status *domain.OrderStatus, page, limit int) ([]*domain.Order, int, error) {
	if status != nil {
		if !ValidOrderStatuses[*status] {
			return nil, 0, &domain.ValidationError{
				Message: fmt.Sprintf("Invalid status filter: '%s'. Must be one of: pending, partially_filled, filled, cancelled", *status),
			}
		}
	}
	if page < 1 {
		return nil, 0, &domain.ValidationError{
			Message: "page must be >= 1",
		}
	}
	if limit < 1 || limit > 100 {
		return nil, 0, &domain.ValidationError{
			Message: "limit must be between 1 and 100",
		}
	}

	orders, total := s.orderStore.List(status, page, limit)
	return orders, total, nil
}
