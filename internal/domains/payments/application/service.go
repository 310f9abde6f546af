package application

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	ordersports "github.com/olamileke/vendora/internal/domains/orders/ports"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
)

// ErrProviderNotConfigured signals a known provider whose adapter was not
// wired, typically because its credentials are absent from the environment.
var ErrProviderNotConfigured = errors.New("payment provider not configured")

// Service routes payment work to provider adapters and maps verified
// webhook outcomes onto orders.
type Service struct {
	registry    *Registry
	orders      ordersports.Service
	logger      *slog.Logger
	callbackURL string
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithCallbackURL sets the URL providers redirect shoppers to after
// checkout, used whenever the caller does not supply one.
func WithCallbackURL(url string) Option {
	return func(s *Service) { s.callbackURL = url }
}

// NewService wires the payment service.
func NewService(registry *Registry, orders ordersports.Service, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{registry: registry, orders: orders, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitializeInput carries a checkout-session request. Amount is in minor
// currency units (kobo).
type InitializeInput struct {
	OrderID     string
	Email       string
	Amount      int64
	Provider    string
	CallbackURL string
}

// Initialize opens a checkout session with the requested provider. It
// never mutates order state; a failed initialization leaves the order
// PENDING and retryable.
func (s *Service) Initialize(ctx context.Context, input InitializeInput) (*domain.InitializeResult, error) {
	provider, err := domain.ParseProvider(input.Provider)
	if err != nil {
		return nil, err
	}
	gateway, ok := s.registry.Gateway(provider)
	if !ok {
		return nil, ErrProviderNotConfigured
	}
	callbackURL := input.CallbackURL
	if callbackURL == "" {
		callbackURL = s.callbackURL
	}
	return gateway.Initialize(ctx, domain.InitializeRequest{
		OrderID:     input.OrderID,
		Email:       input.Email,
		Amount:      input.Amount,
		CallbackURL: callbackURL,
	})
}

// Verify looks a transaction up with the provider that created it.
func (s *Service) Verify(ctx context.Context, providerRaw, reference string) (*domain.VerifyResult, error) {
	provider, err := domain.ParseProvider(providerRaw)
	if err != nil {
		return nil, err
	}
	gateway, ok := s.registry.Gateway(provider)
	if !ok {
		return nil, ErrProviderNotConfigured
	}
	return gateway.Verify(ctx, reference)
}

// HandleWebhook processes one provider callback end to end: signature
// verification over the raw body, event extraction, then reconciliation
// against the order.
//
// It returns an error only when trust could not be established (unknown
// provider, missing secret, bad signature); those must reject with 401 and
// change nothing. Once the payload is verified, internal failures are
// logged and swallowed so the endpoint can acknowledge receipt and stop the
// provider from retry-storming.
func (s *Service) HandleWebhook(ctx context.Context, providerRaw string, header http.Header, body []byte) error {
	provider, err := domain.ParseProvider(providerRaw)
	if err != nil {
		return err
	}
	webhook, ok := s.registry.Webhook(provider)
	if !ok {
		return ErrProviderNotConfigured
	}
	if err := webhook.VerifySignature(header, body); err != nil {
		s.logger.Warn("webhook signature rejected",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()))
		return err
	}

	event, err := webhook.ParseEvent(body)
	if err != nil {
		// Verified but unusable payload; acknowledge so the provider does
		// not redeliver something we can never parse.
		s.logger.Error("verified webhook payload could not be parsed",
			slog.String("provider", string(provider)),
			slog.String("error", err.Error()))
		return nil
	}
	if event.Ignored {
		s.logger.Info("ignoring webhook event type",
			slog.String("provider", string(provider)))
		return nil
	}
	if event.OrderID == "" {
		s.logger.Warn("verified webhook event carries no order id",
			slog.String("provider", string(provider)),
			slog.String("payment.reference", event.Reference))
		return nil
	}

	if event.Succeeded {
		_, err = s.orders.ApplyPaymentSuccess(ctx, event.OrderID, string(provider), event.Reference)
	} else {
		_, err = s.orders.ApplyPaymentFailure(ctx, event.OrderID, string(provider), event.Reference)
	}
	if err != nil {
		s.logger.Error("payment reconciliation failed",
			slog.String("provider", string(provider)),
			slog.String("order.id", event.OrderID),
			slog.String("payment.reference", event.Reference),
			slog.String("error", err.Error()))
	}
	return nil
}
