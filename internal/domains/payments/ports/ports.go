package ports

import (
	"context"
	"errors"
	"net/http"

	"github.com/olamileke/vendora/internal/domains/payments/domain"
)

var (
	// ErrProvider signals an upstream gateway failure (network, 5xx, or a
	// response shape we could not use).
	ErrProvider = errors.New("payment provider error")
	// ErrBadSignature signals a webhook whose signature did not verify.
	ErrBadSignature = errors.New("webhook signature verification failed")
	// ErrSecretMissing signals the provider's shared secret is not
	// configured; verification cannot even be attempted.
	ErrSecretMissing = errors.New("webhook secret not configured")
)

// Gateway is the capability every provider adapter implements.
type Gateway interface {
	Initialize(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*domain.VerifyResult, error)
}

// WebhookHandler verifies and decodes one provider's callbacks.
// VerifySignature must run over the raw body before any business field is
// trusted; ParseEvent is only called on verified payloads.
type WebhookHandler interface {
	VerifySignature(header http.Header, body []byte) error
	ParseEvent(body []byte) (*domain.WebhookEvent, error)
}
