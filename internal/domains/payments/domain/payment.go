package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Provider identifies a supported payment gateway.
type Provider string

const (
	ProviderOPay     Provider = "opay"
	ProviderMonnify  Provider = "monnify"
	ProviderPaystack Provider = "paystack"
)

// ErrUnknownProvider signals a provider identifier outside the enum.
var ErrUnknownProvider = errors.New("invalid payment provider")

// ParseProvider normalizes and validates a provider identifier.
func ParseProvider(raw string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(raw))) {
	case ProviderOPay:
		return ProviderOPay, nil
	case ProviderMonnify:
		return ProviderMonnify, nil
	case ProviderPaystack:
		return ProviderPaystack, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, raw)
	}
}

// Providers lists every supported provider; the registry is checked against
// this at wiring time so a new enum value cannot ship without an adapter.
func Providers() []Provider {
	return []Provider{ProviderOPay, ProviderMonnify, ProviderPaystack}
}

// InitializeRequest asks a gateway to open a checkout session.
// Amount is in minor currency units (kobo); adapters convert where their
// provider expects major units.
type InitializeRequest struct {
	OrderID     string
	Email       string
	Amount      int64
	CallbackURL string
}

// InitializeResult is the normalized gateway response: where to send the
// customer and the reference to reconcile against later.
type InitializeResult struct {
	Provider   Provider
	PaymentURL string
	Reference  string
}

// VerifyResult is the normalized outcome of a reference lookup.
type VerifyResult struct {
	Provider  Provider
	Reference string
	Status    string
	Paid      bool
}

// WebhookEvent is the canonical pair extracted from a verified provider
// callback, plus whether the provider reports the charge as successful.
type WebhookEvent struct {
	Provider  Provider
	OrderID   string
	Reference string
	Succeeded bool
	// Ignored marks event types this core does not act on (e.g. transfer
	// notifications); the endpoint still acknowledges them.
	Ignored bool
}

// BuildReference derives the advisory, traceable reference adapters attach
// to outbound initializations. It is not a server-enforced idempotency key.
func BuildReference(orderID string) string {
	return fmt.Sprintf("%s-%d", orderID, time.Now().Unix())
}
