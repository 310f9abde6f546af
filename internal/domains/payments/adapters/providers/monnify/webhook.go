package monnify

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

// SignatureHeader carries the HMAC Monnify computes over the raw body.
const SignatureHeader = "Monnify-Signature"

var _ ports.WebhookHandler = (*Webhook)(nil)

// Webhook verifies and decodes Monnify transaction-completion callbacks.
type Webhook struct {
	secretKey string
}

// NewWebhook wires the webhook handler with the client secret.
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
	EventType string `json:"eventType"`
	EventData struct {
		TransactionReference string `json:"transactionReference"`
		PaymentReference     string `json:"paymentReference"`
		PaymentStatus        string `json:"paymentStatus"`
		Product              struct {
			// Monnify echoes our paymentReference back here; the order id
			// is its leading segment (see domain.BuildReference).
			Reference string `json:"reference"`
		} `json:"product"`
	} `json:"eventData"`
}

// ParseEvent extracts the canonical (orderId, reference) pair from a
// verified Monnify payload.
func (w *Webhook) ParseEvent(body []byte) (*domain.WebhookEvent, error) {
	var payload eventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode monnify event: %w", err)
	}
	event := &domain.WebhookEvent{
		Provider:  domain.ProviderMonnify,
		OrderID:   orderIDFromReference(payload.EventData.Product.Reference),
		Reference: payload.EventData.TransactionReference,
	}
	switch payload.EventType {
	case "SUCCESSFUL_TRANSACTION":
		event.Succeeded = true
	case "FAILED_TRANSACTION":
		event.Succeeded = false
	default:
		event.Ignored = true
	}
	return event, nil
}

// orderIDFromReference strips the timestamp suffix BuildReference appended.
func orderIDFromReference(reference string) string {
	for i := len(reference) - 1; i >= 0; i-- {
		if reference[i] == '-' {
			return reference[:i]
		}
	}
	return reference
}
