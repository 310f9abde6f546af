package memory

import (
	"context"
	"sync"
	"time"

	inventorymemory "github.com/olamileke/vendora/internal/domains/inventory/adapters/memory"
	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps orders in memory with the same all-or-nothing
// reservation semantics as the Postgres adapter. Used for tests and
// DSN-less runs.
type Repository struct {
	mu        sync.Mutex
	inventory *inventorymemory.Accessor
	byID      map[string]*domain.Order
	byNumber  map[string]string
}

// NewRepository wires the in-memory store against the in-memory inventory
// so stock decrements stay visible to both.
func NewRepository(inventory *inventorymemory.Accessor) *Repository {
	return &Repository{
		inventory: inventory,
		byID:      make(map[string]*domain.Order),
		byNumber:  make(map[string]string),
	}
}

// Create reserves stock for every line and stores the order under one lock,
// rolling back earlier decrements if any line comes up short.
func (r *Repository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byNumber[order.OrderNumber]; taken {
		return ports.ErrOrderNumberTaken
	}

	reserved := make([]domain.Item, 0, len(order.Items))
	for _, item := range order.Items {
		if !r.inventory.AdjustStock(item.VariantID, -item.Quantity) {
			for _, done := range reserved {
				r.inventory.AdjustStock(done.VariantID, done.Quantity)
			}
			return &ports.InsufficientStockError{
				ProductName:  item.ProductName,
				VariantSize:  item.VariantSize,
				VariantColor: item.VariantColor,
				Requested:    item.Quantity,
				Available:    r.inventory.Stock(item.VariantID),
			}
		}
		reserved = append(reserved, item)
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	stored := cloneOrder(order)
	r.byID[order.ID] = stored
	r.byNumber[order.OrderNumber] = order.ID
	return nil
}

// GetByID fetches an order copy by identifier.
func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

// GetByNumber fetches an order copy by its customer-facing number.
func (r *Repository) GetByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(r.byID[id]), nil
}

// UpdateStatus overwrites the fulfillment status.
func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return cloneOrder(order), nil
}

// UpdatePayment persists payment fields with the same guard as the
// Postgres adapter: a PAID order only ever moves to REFUNDED.
func (r *Repository) UpdatePayment(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[order.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if stored.PaymentStatus == domain.PaymentPaid && order.PaymentStatus != domain.PaymentRefunded {
		return nil
	}
	stored.PaymentStatus = order.PaymentStatus
	stored.PaymentReference = order.PaymentReference
	stored.PaymentProvider = order.PaymentProvider
	stored.UpdatedAt = time.Now()
	return nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	cloned := *order
	cloned.Items = make([]domain.Item, len(order.Items))
	copy(cloned.Items, order.Items)
	return &cloned
}
