package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
)

// ErrNotFound signals a missing order.
var ErrNotFound = errors.New("order not found")

// ErrOrderNumberTaken signals an order-number collision on insert. The
// repository surfaces it so the caller can retry with a fresh suffix.
var ErrOrderNumberTaken = errors.New("order number already exists")

// InsufficientStockError names the exact line that could not be reserved so
// the storefront can tell the customer which size/color ran out.
type InsufficientStockError struct {
	ProductName  string
	VariantSize  string
	VariantColor string
	Requested    int
	Available    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (%s/%s): requested %d, available %d",
		e.ProductName, e.VariantSize, e.VariantColor, e.Requested, e.Available)
}

// Repository persists the order aggregate.
//
// Create must reserve stock for every line and insert the order and its
// items in one atomic transaction: the variant rows are locked, stock is
// re-checked and decremented, and the whole thing rolls back on any
// failure. No partial checkout ever becomes visible.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	// UpdatePayment persists payment fields. Guarded so a PAID order is
	// never overwritten by a late or duplicate event.
	UpdatePayment(ctx context.Context, order *domain.Order) error
}

// Notifier delivers the order-confirmation message. Failures are logged by
// the caller and never fail the order.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

// EventPublisher emits order lifecycle events to downstream consumers.
// Publishing is fire-and-forget from the order core's point of view.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishPaymentSettled(ctx context.Context, order *domain.Order) error
}

// CreateOrderLine is one requested cart line.
type CreateOrderLine struct {
	VariantID string
	Quantity  int
}

// CreateOrderInput carries everything needed to place an order.
type CreateOrderInput struct {
	UserID          string
	ShippingZoneID  string
	ShippingAddress domain.Address
	Items           []CreateOrderLine
}

// Service exposes the order use cases consumed by HTTP handlers, webhook
// reconciliation, and the observability decorator.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	TrackByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	ApplyPaymentSuccess(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error)
	ApplyPaymentFailure(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error)
	MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error)
}
