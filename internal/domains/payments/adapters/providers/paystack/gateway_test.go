package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olamileke/vendora/internal/clients/http/rest"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

func newGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := rest.New(server.URL, server.Client())
	require.NoError(t, err)
	gateway, err := NewGateway(client, "sk_test_secret")
	require.NoError(t, err)
	return gateway
}

func TestInitialize(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		require.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Paystack takes kobo directly; no unit conversion.
		require.Equal(t, float64(1450000), req["amount"])
		require.Equal(t, "ada@example.com", req["email"])
		require.Equal(t, "https://shop.example.com/payment/complete", req["callback_url"])
		metadata, ok := req["metadata"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "order-1", metadata["orderId"])

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         req["reference"],
			},
		})
	})

	result, err := gateway.Initialize(context.Background(), domain.InitializeRequest{
		OrderID:     "order-1",
		Email:       "ada@example.com",
		Amount:      1450000,
		CallbackURL: "https://shop.example.com/payment/complete",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ProviderPaystack, result.Provider)
	require.Equal(t, "https://checkout.paystack.com/abc123", result.PaymentURL)
	require.Contains(t, result.Reference, "order-1-")
}

func TestInitialize_Rejected(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "Invalid key"})
	})

	_, err := gateway.Initialize(context.Background(), domain.InitializeRequest{OrderID: "order-1", Email: "a@b.c", Amount: 1000})
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestVerify(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/ref-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "success", "reference": "ref-123"},
		})
	})

	result, err := gateway.Verify(context.Background(), "ref-123")
	require.NoError(t, err)
	require.True(t, result.Paid)
	require.Equal(t, "ref-123", result.Reference)
}

func TestVerify_NotPaid(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "abandoned", "reference": "ref-123"},
		})
	})

	result, err := gateway.Verify(context.Background(), "ref-123")
	require.NoError(t, err)
	require.False(t, result.Paid)
	require.Equal(t, "abandoned", result.Status)
}
