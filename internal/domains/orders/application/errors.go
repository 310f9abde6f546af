package application

import (
	"errors"
	"fmt"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	inventoryports "github.com/olamileke/vendora/internal/domains/inventory/ports"
	shippingports "github.com/olamileke/vendora/internal/domains/shipping/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrTotalsMismatch) ||
		errors.Is(err, domain.ErrPaymentFinal) ||
		errors.Is(err, inventoryports.ErrVariantNotFound) ||
		errors.Is(err, shippingports.ErrZoneNotFound) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
