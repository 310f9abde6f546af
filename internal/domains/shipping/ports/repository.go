package ports

import (
	"context"
	"errors"

	"github.com/olamileke/vendora/internal/domains/shipping/domain"
)

// ErrZoneNotFound signals the shipping zone does not exist.
var ErrZoneNotFound = errors.New("shipping zone not found")

// Repository resolves shipping zones for fee and currency lookup.
type Repository interface {
	GetZone(ctx context.Context, id string) (*domain.Zone, error)
}
