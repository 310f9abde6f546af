package memory

import (
	"context"
	"sync"

	"github.com/olamileke/vendora/internal/domains/shipping/domain"
	"github.com/olamileke/vendora/internal/domains/shipping/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps shipping zones in memory.
type Repository struct {
	mu    sync.RWMutex
	zones map[string]domain.Zone
}

func NewRepository() *Repository {
	return &Repository{zones: make(map[string]domain.Zone)}
}

// Put registers or replaces a zone.
func (r *Repository) Put(zone domain.Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[zone.ID] = zone
}

// GetZone returns a copy of the stored zone.
func (r *Repository) GetZone(_ context.Context, id string) (*domain.Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	zone, ok := r.zones[id]
	if !ok {
		return nil, ports.ErrZoneNotFound
	}
	return &zone, nil
}
