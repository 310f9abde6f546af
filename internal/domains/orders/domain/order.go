package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status enumerates fulfillment progression. Transitions are operator-driven
// and deliberately unconstrained: staff may override any status with any
// other known status.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// PaymentStatus enumerates the payment side of the order lifecycle. It is
// mutated only by payment reconciliation; PAID is terminal except for an
// explicit refund transition.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

var (
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidPaymentStatus = errors.New("payment status is invalid")
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidQuantity      = errors.New("item quantity must be greater than zero")
	ErrTotalsMismatch       = errors.New("order totals do not balance")
	ErrPaymentFinal         = errors.New("payment status is final")
)

// Item is a purchased line with pricing and catalog details captured at
// order time so historical orders stay readable after catalog changes.
type Item struct {
	VariantID    string
	ProductID    string
	ProductName  string
	VariantSize  string
	VariantColor string
	Quantity     int
	UnitPrice    int64 // minor currency units (kobo)
	Total        int64
}

// Address is an immutable snapshot of where the order ships, not a live
// reference to a stored customer address.
type Address struct {
	FullName   string
	Phone      string
	Email      string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Order models the purchase aggregate: items, money totals, shipping
// snapshot, and the two independent lifecycle columns.
type Order struct {
	ID               string
	OrderNumber      string
	UserID           string // empty for guest checkout
	Status           Status
	PaymentStatus    PaymentStatus
	PaymentProvider  string
	PaymentReference string
	Subtotal         int64
	ShippingFee      int64
	Discount         int64
	Total            int64
	Currency         string
	ShippingZoneID   string
	ShippingAddress  Address
	Items            []Item
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder validates and constructs an order aggregate in its initial state.
func NewOrder(id, orderNumber, userID, zoneID, currency string, address Address, items []Item, shippingFee, discount int64) (*Order, error) {
	order := &Order{
		ID:              id,
		OrderNumber:     orderNumber,
		UserID:          userID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		ShippingFee:     shippingFee,
		Discount:        discount,
		Currency:        currency,
		ShippingZoneID:  zoneID,
		ShippingAddress: address,
		Items:           items,
	}
	for i := range order.Items {
		order.Items[i].Total = order.Items[i].UnitPrice * int64(order.Items[i].Quantity)
		order.Subtotal += order.Items[i].Total
	}
	order.Total = order.Subtotal - order.Discount + order.ShippingFee
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	var subtotal int64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidQuantity, item.VariantID)
		}
		if item.Total != item.UnitPrice*int64(item.Quantity) {
			return ErrTotalsMismatch
		}
		subtotal += item.Total
	}
	if subtotal != o.Subtotal || o.Total != o.Subtotal-o.Discount+o.ShippingFee {
		return ErrTotalsMismatch
	}
	if !isValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if !isValidPaymentStatus(o.PaymentStatus) {
		return ErrInvalidPaymentStatus
	}
	return nil
}

// UpdateStatus accepts any known fulfillment status from any current value.
// Operators use this as an override affordance; only the enum is enforced.
func (o *Order) UpdateStatus(status Status) error {
	if !isValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// MarkPaid records a verified successful payment. Returns false without
// mutating when the order is already PAID, which is the idempotence
// contract webhook redelivery relies on.
func (o *Order) MarkPaid(reference string) bool {
	if o.PaymentStatus == PaymentPaid {
		return false
	}
	o.PaymentStatus = PaymentPaid
	o.PaymentReference = reference
	return true
}

// MarkPaymentFailed records a verified failed payment. A no-op when the
// order has already been paid; a late failure event must not unpay it.
func (o *Order) MarkPaymentFailed(reference string) bool {
	if o.PaymentStatus == PaymentPaid {
		return false
	}
	o.PaymentStatus = PaymentFailed
	if reference != "" {
		o.PaymentReference = reference
	}
	return true
}

// MarkRefunded flags the payment as refunded. Only settled payments
// (paid or failed) can be flagged.
func (o *Order) MarkRefunded() error {
	switch o.PaymentStatus {
	case PaymentPaid, PaymentFailed:
		o.PaymentStatus = PaymentRefunded
		return nil
	default:
		return ErrPaymentFinal
	}
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}

func isValidPaymentStatus(status PaymentStatus) bool {
	switch status {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	default:
		return false
	}
}
