// Package cache is a read-through Redis layer in front of the order
// repository. Track-by-number is the hot storefront path (customers
// polling their order page), so reads are cached briefly and every write
// path invalidates.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

const (
	keyPrefix  = "vendora:order:"
	defaultTTL = 30 * time.Second
)

var _ ports.Repository = (*Repository)(nil)

// Repository decorates an order repository with Redis caching.
type Repository struct {
	inner  ports.Repository
	client redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// NewRepository wires the cache decorator. Cache failures degrade to the
// underlying repository and are only logged.
func NewRepository(inner ports.Repository, client redis.UniversalClient, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{inner: inner, client: client, logger: logger, ttl: defaultTTL}
}

// Create passes through; nothing cacheable exists before the insert.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	return r.inner.Create(ctx, order)
}

// GetByID reads through the cache keyed by internal id.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.readThrough(ctx, keyPrefix+"id:"+id, func() (*domain.Order, error) {
		return r.inner.GetByID(ctx, id)
	})
}

// GetByNumber reads through the cache keyed by order number.
func (r *Repository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.readThrough(ctx, keyPrefix+"number:"+orderNumber, func() (*domain.Order, error) {
		return r.inner.GetByNumber(ctx, orderNumber)
	})
}

// UpdateStatus writes through and drops both cache entries for the order.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	order, err := r.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, order)
	return order, nil
}

// UpdatePayment writes through and drops both cache entries for the order.
func (r *Repository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	if err := r.inner.UpdatePayment(ctx, order); err != nil {
		return err
	}
	r.invalidate(ctx, order)
	return nil
}

func (r *Repository) readThrough(ctx context.Context, key string, load func() (*domain.Order, error)) (*domain.Order, error) {
	if r.client != nil {
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var order domain.Order
			if err := json.Unmarshal(raw, &order); err == nil {
				return &order, nil
			}
		}
	}
	order, err := load()
	if err != nil {
		return nil, err
	}
	if r.client != nil {
		if raw, err := json.Marshal(order); err == nil {
			if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
				r.logger.Warn("order cache set failed", slog.String("key", key), slog.String("error", err.Error()))
			}
		}
	}
	return order, nil
}

func (r *Repository) invalidate(ctx context.Context, order *domain.Order) {
	if r.client == nil || order == nil {
		return
	}
	keys := []string{keyPrefix + "id:" + order.ID, keyPrefix + "number:" + order.OrderNumber}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("order cache invalidation failed",
			slog.String("order.id", order.ID),
			slog.String("error", err.Error()))
	}
}
