package monnify

import (
	"context"
	"encoding/base64"
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
	gateway, err := NewGateway(client, "mk_api_key", "mk_secret", "CONTRACT01")
	require.NoError(t, err)
	return gateway
}

func TestInitialize(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			expected := base64.StdEncoding.EncodeToString([]byte("mk_api_key:mk_secret"))
			require.Equal(t, "Basic "+expected, r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"requestSuccessful": true,
				"responseBody":      map[string]any{"accessToken": "tok-1"},
			})
		case "/api/v1/merchant/transactions/init-transaction":
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			// 1450000 kobo goes out as 14500 naira.
			require.Equal(t, float64(14500), req["amount"])
			require.Equal(t, "NGN", req["currencyCode"])
			require.Equal(t, "CONTRACT01", req["contractCode"])
			require.Equal(t, "https://shop.example.com/payment/complete", req["redirectUrl"])
			json.NewEncoder(w).Encode(map[string]any{
				"requestSuccessful": true,
				"responseBody": map[string]any{
					"checkoutUrl":          "https://sandbox.monnify.com/checkout/xyz",
					"transactionReference": "MNFY|001",
					"paymentReference":     req["paymentReference"],
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := gateway.Initialize(context.Background(), domain.InitializeRequest{
		OrderID:     "order-1",
		Email:       "ada@example.com",
		Amount:      1450000,
		CallbackURL: "https://shop.example.com/payment/complete",
	})
	require.NoError(t, err)
	require.Equal(t, domain.ProviderMonnify, result.Provider)
	require.Equal(t, "https://sandbox.monnify.com/checkout/xyz", result.PaymentURL)
	require.Contains(t, result.Reference, "order-1-")
}

func TestInitialize_LoginRejected(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"requestSuccessful": false})
	})

	_, err := gateway.Initialize(context.Background(), domain.InitializeRequest{OrderID: "order-1", Email: "a@b.c", Amount: 1000})
	require.ErrorIs(t, err, ports.ErrProvider)
}

func TestVerify(t *testing.T) {
	gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"requestSuccessful": true,
				"responseBody":      map[string]any{"accessToken": "tok-1"},
			})
		case "/api/v2/merchant/transactions/query":
			require.Equal(t, "order-1-1735689600", r.URL.Query().Get("paymentReference"))
			json.NewEncoder(w).Encode(map[string]any{
				"requestSuccessful": true,
				"responseBody": map[string]any{
					"paymentStatus":    "PAID",
					"paymentReference": "order-1-1735689600",
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := gateway.Verify(context.Background(), "order-1-1735689600")
	require.NoError(t, err)
	require.True(t, result.Paid)
	require.Equal(t, "PAID", result.Status)
}
