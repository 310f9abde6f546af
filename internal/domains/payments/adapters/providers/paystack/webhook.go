package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

// SignatureHeader carries the HMAC Paystack computes over the raw body.
const SignatureHeader = "X-Paystack-Signature"

var _ ports.WebhookHandler = (*Webhook)(nil)

// Webhook verifies and decodes Paystack event callbacks.
type Webhook struct {
	secretKey string
}

// NewWebhook wires the webhook handler with the shared secret key.
func NewWebhook(secretKey string) *Webhook {
	return &Webhook{secretKey: secretKey}
}

// VerifySignature recomputes HMAC-SHA512 over the raw body and compares it
// in constant time against the signature header.
func (w *Webhook) VerifySignature(header http.Header, body []byte) error {
	if w.secretKey == "" {
		return ports.ErrSecretMissing
	}
	signature := header.Get(SignatureHeader)
	if signature == "" {
		return fmt.Errorf("%w: missing %s header", ports.ErrBadSignature, SignatureHeader)
	}
	mac := hmac.New(sha512.New, []byte(w.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ports.ErrBadSignature
	}
	return nil
}

type eventPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Metadata  struct {
			OrderID string `json:"orderId"`
		} `json:"metadata"`
	} `json:"data"`
}

// ParseEvent extracts the canonical (orderId, reference) pair. Only charge
// events are acted on; everything else is acknowledged and ignored.
func (w *Webhook) ParseEvent(body []byte) (*domain.WebhookEvent, error) {
	var payload eventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode paystack event: %w", err)
	}
	event := &domain.WebhookEvent{
		Provider:  domain.ProviderPaystack,
		OrderID:   payload.Data.Metadata.OrderID,
		Reference: payload.Data.Reference,
	}
	switch payload.Event {
	case "charge.success":
		event.Succeeded = true
	case "charge.failed":
		event.Succeeded = false
	default:
		event.Ignored = true
	}
	return event, nil
}
