package ports

import (
	"context"
	"errors"

	"github.com/olamileke/vendora/internal/domains/inventory/domain"
)

// ErrVariantNotFound signals the requested SKU does not exist.
var ErrVariantNotFound = errors.New("product variant not found")

// Accessor reads variants for pricing and snapshot purposes. The stock it
// reports is advisory; the authoritative check happens under row locks
// inside the order-creation transaction.
type Accessor interface {
	GetVariant(ctx context.Context, id string) (*domain.Variant, error)
}
