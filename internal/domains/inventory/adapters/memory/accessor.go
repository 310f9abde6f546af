package memory

import (
	"context"
	"sync"

	"github.com/olamileke/vendora/internal/domains/inventory/domain"
	"github.com/olamileke/vendora/internal/domains/inventory/ports"
)

var _ ports.Accessor = (*Accessor)(nil)

// Accessor keeps variants in memory. Used for tests and DSN-less runs.
type Accessor struct {
	mu       sync.RWMutex
	variants map[string]domain.Variant
}

// NewAccessor seeds an empty in-memory variant catalog.
func NewAccessor() *Accessor {
	return &Accessor{variants: make(map[string]domain.Variant)}
}

// Put registers or replaces a variant.
func (a *Accessor) Put(variant domain.Variant) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.variants[variant.ID] = variant
}

// GetVariant returns a copy of the stored variant.
func (a *Accessor) GetVariant(_ context.Context, id string) (*domain.Variant, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	variant, ok := a.variants[id]
	if !ok {
		return nil, ports.ErrVariantNotFound
	}
	return &variant, nil
}

// AdjustStock shifts a variant's stock by delta, used by the in-memory
// order repository to mirror reservation effects.
func (a *Accessor) AdjustStock(id string, delta int) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	variant, ok := a.variants[id]
	if !ok || variant.Stock+delta < 0 {
		return false
	}
	variant.Stock += delta
	a.variants[id] = variant
	return true
}

// Stock reports the current stock counter for assertions in tests.
func (a *Accessor) Stock(id string) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.variants[id].Stock
}
