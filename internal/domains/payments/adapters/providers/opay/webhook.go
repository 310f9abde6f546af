package opay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

var _ ports.WebhookHandler = (*Webhook)(nil)

// Webhook verifies and decodes OPay callbacks. OPay carries the HMAC in
// the bearer segment of the Authorization header rather than a custom one.
type Webhook struct {
	privateKey string
}

// NewWebhook wires the webhook handler with the merchant private key.
func NewWebhook(privateKey string) *Webhook {
	return &Webhook{privateKey: privateKey}
}

// VerifySignature recomputes HMAC-SHA512 over the raw body and compares it
// in constant time against the Authorization bearer segment.
func (w *Webhook) VerifySignature(header http.Header, body []byte) error {
	if w.privateKey == "" {
		return ports.ErrSecretMissing
	}
	authorization := header.Get("Authorization")
	signature := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer"))
	if signature == "" {
		return fmt.Errorf("%w: missing Authorization bearer signature", ports.ErrBadSignature)
	}
	mac := hmac.New(sha512.New, []byte(w.privateKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ports.ErrBadSignature
	}
	return nil
}

type eventPayload struct {
	OrderID   string `json:"orderId"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ParseEvent extracts the canonical (orderId, reference) pair from a
// verified OPay payload.
func (w *Webhook) ParseEvent(body []byte) (*domain.WebhookEvent, error) {
	var payload eventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode opay event: %w", err)
	}
	event := &domain.WebhookEvent{
		Provider:  domain.ProviderOPay,
		OrderID:   payload.OrderID,
		Reference: payload.Reference,
	}
	switch payload.Status {
	case "SUCCESS":
		event.Succeeded = true
	case "FAIL", "FAILED", "CLOSE":
		event.Succeeded = false
	default:
		event.Ignored = true
	}
	return event, nil
}
