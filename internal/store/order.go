package store

import (
	"sync"

	"github.com/arqamxjay/Psx-Alpha-HFT-Simulator/internal/domain"
)

// OrderStore is a thread-safe in-memory store for every order the engine
// has ever seen, keyed by order_id, with submission order preserved for
// listing.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	ids    []string // order_ids in submission order (append-only)
}

// NewOrderStore creates an empty OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[string]*domain.Order),
	}
}

// Create adds an order to the store.
func (s *OrderStore) Create(o *domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders[o.OrderID] = o
	s.ids = append(s.ids, o.OrderID)
}

// Get retrieves an order by ID. It returns domain.ErrOrderNotFound if
// the order does not exist.
func (s *OrderStore) Get(id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// Exists reports whether an order with the given ID has been submitted.
func (s *OrderStore) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.orders[id]
	return ok
}

// List returns orders in reverse submission order (newest first). If
// status is non-nil, only orders matching that status are included.
// Pagination is 1-based. Returns the matching orders for the requested
// page and the total count of matching orders (before pagination).
func (s *OrderStore) List(status *domain.OrderStatus, page, limit int) ([]*domain.Order, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]*domain.Order, 0)
	for i := len(s.ids) - 1; i >= 0; i-- {
		o := s.orders[s.ids[i]]
		if status != nil && o.Status != *status {
			continue
		}
		filtered = append(filtered, o)
	}

	total := len(filtered)

	start := (page - 1) * limit
	if start >= total {
		return []*domain.Order{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return filtered[start:end], total
}
