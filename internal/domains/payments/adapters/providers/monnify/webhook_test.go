package monnify

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	webhook := NewWebhook("monnify_secret")
	body := []byte(`{"eventType":"SUCCESSFUL_TRANSACTION"}`)

	header := http.Header{}
	header.Set(SignatureHeader, sign("monnify_secret", body))
	require.NoError(t, webhook.VerifySignature(header, body))

	header.Set(SignatureHeader, sign("another_secret", body))
	require.ErrorIs(t, webhook.VerifySignature(header, body), ports.ErrBadSignature)

	require.ErrorIs(t, NewWebhook("").VerifySignature(header, body), ports.ErrSecretMissing)
}

func TestParseEvent(t *testing.T) {
	webhook := NewWebhook("monnify_secret")

	event, err := webhook.ParseEvent([]byte(`{
		"eventType": "SUCCESSFUL_TRANSACTION",
		"eventData": {
			"transactionReference": "MNFY|001",
			"paymentReference": "order-1-1735689600",
			"paymentStatus": "PAID",
			"product": {"reference": "order-1-1735689600"}
		}
	}`))
	require.NoError(t, err)
	require.Equal(t, domain.ProviderMonnify, event.Provider)
	require.Equal(t, "order-1", event.OrderID)
	require.Equal(t, "MNFY|001", event.Reference)
	require.True(t, event.Succeeded)

	event, err = webhook.ParseEvent([]byte(`{
		"eventType": "FAILED_TRANSACTION",
		"eventData": {"transactionReference": "MNFY|002", "product": {"reference": "order-2-1735689601"}}
	}`))
	require.NoError(t, err)
	require.Equal(t, "order-2", event.OrderID)
	require.False(t, event.Succeeded)
	require.False(t, event.Ignored)

	event, err = webhook.ParseEvent([]byte(`{"eventType":"SETTLEMENT","eventData":{}}`))
	require.NoError(t, err)
	require.True(t, event.Ignored)
}

func TestOrderIDFromReference(t *testing.T) {
	// UUID order ids contain hyphens; only the timestamp suffix is stripped.
	require.Equal(t, "7f9c24e5-5377-4f4c-b1f1-9a2f0b3c4d5e",
		orderIDFromReference("7f9c24e5-5377-4f4c-b1f1-9a2f0b3c4d5e-1735689600"))
	require.Equal(t, "plain", orderIDFromReference("plain"))
}
