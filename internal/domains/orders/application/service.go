package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/microcosm-cc/bluemonday"

	inventoryports "github.com/olamileke/vendora/internal/domains/inventory/ports"
	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
	shippingports "github.com/olamileke/vendora/internal/domains/shipping/ports"
)

// Order numbers collide rarely but not never; Create retries inserts with a
// fresh suffix this many times before giving up.
const maxNumberAttempts = 3

// Service orchestrates order use cases: placement with atomic stock
// reservation, reads, staff status mutation, and payment reconciliation.
type Service struct {
	repo      ports.Repository
	inventory inventoryports.Accessor
	shipping  shippingports.Repository
	notifier  ports.Notifier
	events    ports.EventPublisher
	logger    *slog.Logger
	sanitizer *bluemonday.Policy
	prefix    string
}

type Option func(*Service)

// WithNotifier injects the order-confirmation dispatcher.
func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithEventPublisher injects the lifecycle event publisher.
func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithNumberPrefix overrides the order-number prefix.
func WithNumberPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewService wires the order service with its collaborators.
func NewService(repo ports.Repository, inventory inventoryports.Accessor, shipping shippingports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		inventory: inventory,
		shipping:  shipping,
		logger:    slog.Default(),
		sanitizer: bluemonday.StrictPolicy(),
		prefix:    "VDR",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Create places an order: prices every line from the catalog, reserves
// stock and inserts the order atomically, then fires the confirmation
// notification without blocking or failing the checkout.
func (s *Service) Create(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, mapError(domain.ErrNoItems)
	}
	zone, err := s.shipping.GetZone(ctx, input.ShippingZoneID)
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]domain.Item, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, mapError(fmt.Errorf("%w: %s", domain.ErrInvalidQuantity, line.VariantID))
		}
		variant, err := s.inventory.GetVariant(ctx, line.VariantID)
		if err != nil {
			return nil, mapError(err)
		}
		// Advisory pre-check; the repository re-checks under row locks.
		if variant.Stock < line.Quantity {
			return nil, &ports.InsufficientStockError{
				ProductName:  variant.ProductName,
				VariantSize:  variant.Size,
				VariantColor: variant.Color,
				Requested:    line.Quantity,
				Available:    variant.Stock,
			}
		}
		items = append(items, domain.Item{
			VariantID:    variant.ID,
			ProductID:    variant.ProductID,
			ProductName:  variant.ProductName,
			VariantSize:  variant.Size,
			VariantColor: variant.Color,
			Quantity:     line.Quantity,
			UnitPrice:    variant.UnitPrice(),
		})
	}

	address := s.sanitizeAddress(input.ShippingAddress)

	var order *domain.Order
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		order, err = domain.NewOrder(
			uuid.NewString(),
			s.nextOrderNumber(),
			input.UserID,
			input.ShippingZoneID,
			zone.Currency,
			address,
			cloneItems(items),
			zone.Fee,
			0,
		)
		if err != nil {
			return nil, mapError(err)
		}
		err = s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, ports.ErrOrderNumberTaken) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.fireAndForget(ctx, order)
	return order, nil
}

// GetByID loads one order with its items.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// TrackByNumber loads an order by its customer-facing number.
func (s *Service) TrackByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.repo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
}

// UpdateStatus applies a staff-driven fulfillment transition. Any known
// status may overwrite any other; operators use this as an override.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	probe := domain.Order{Status: domain.StatusPending}
	if err := probe.UpdateStatus(status); err != nil {
		return nil, mapError(err)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// ApplyPaymentSuccess records a verified successful payment outcome.
// Re-applying success to an already-PAID order returns it unchanged; this
// is what makes duplicate webhook delivery safe.
func (s *Service) ApplyPaymentSuccess(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// Either orphaned webhook data or the provider echoed the
			// wrong value back as our order id. Worth investigating.
			s.logger.Warn("payment success for unknown order",
				slog.String("order.id", orderID),
				slog.String("payment.reference", providerReference))
		}
		return nil, err
	}
	if !order.MarkPaid(providerReference) {
		return order, nil
	}
	if provider != "" {
		order.PaymentProvider = provider
	}
	if err := s.repo.UpdatePayment(ctx, order); err != nil {
		return nil, err
	}
	s.publishSettled(ctx, order)
	return order, nil
}

// ApplyPaymentFailure records a verified failed payment outcome. A no-op
// for orders that already settled as PAID.
func (s *Service) ApplyPaymentFailure(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			s.logger.Warn("payment failure for unknown order",
				slog.String("order.id", orderID),
				slog.String("payment.reference", providerReference))
		}
		return nil, err
	}
	if !order.MarkPaymentFailed(providerReference) {
		return order, nil
	}
	if provider != "" {
		order.PaymentProvider = provider
	}
	if err := s.repo.UpdatePayment(ctx, order); err != nil {
		return nil, err
	}
	s.publishSettled(ctx, order)
	return order, nil
}

// MarkRefunded flags a settled payment as refunded.
func (s *Service) MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.MarkRefunded(); err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.UpdatePayment(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) sanitizeAddress(address domain.Address) domain.Address {
	clean := func(v string) string {
		return strings.TrimSpace(s.sanitizer.Sanitize(v))
	}
	return domain.Address{
		FullName:   clean(address.FullName),
		Phone:      clean(address.Phone),
		Email:      clean(address.Email),
		Line1:      clean(address.Line1),
		Line2:      clean(address.Line2),
		City:       clean(address.City),
		State:      clean(address.State),
		PostalCode: clean(address.PostalCode),
		Country:    clean(address.Country),
	}
}

func (s *Service) nextOrderNumber() string {
	suffix := strings.ToUpper(shortuuid.New())
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("%s-%s-%s", s.prefix, time.Now().UTC().Format("20060102"), suffix)
}

// fireAndForget dispatches the confirmation notification and the created
// event off the request path. Failures are logged, never propagated, and
// never roll back the committed order.
func (s *Service) fireAndForget(ctx context.Context, order *domain.Order) {
	detached := context.WithoutCancel(ctx)
	if s.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(detached, 30*time.Second)
			defer cancel()
			if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
				s.logger.Error("order confirmation dispatch failed",
					slog.String("order.number", order.OrderNumber),
					slog.String("error", err.Error()))
			}
		}()
	}
	if s.events != nil {
		go func() {
			ctx, cancel := context.WithTimeout(detached, 10*time.Second)
			defer cancel()
			if err := s.events.PublishOrderCreated(ctx, order); err != nil {
				s.logger.Error("order created event publish failed",
					slog.String("order.number", order.OrderNumber),
					slog.String("error", err.Error()))
			}
		}()
	}
}

func (s *Service) publishSettled(ctx context.Context, order *domain.Order) {
	if s.events == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, 10*time.Second)
		defer cancel()
		if err := s.events.PublishPaymentSettled(ctx, order); err != nil {
			s.logger.Error("payment settled event publish failed",
				slog.String("order.number", order.OrderNumber),
				slog.String("error", err.Error()))
		}
	}()
}

func cloneItems(items []domain.Item) []domain.Item {
	cloned := make([]domain.Item, len(items))
	copy(cloned, items)
	return cloned
}

var _ ports.Service = (*Service)(nil)
