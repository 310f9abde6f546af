package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	inventorymemory "github.com/olamileke/vendora/internal/domains/inventory/adapters/memory"
	inventorydomain "github.com/olamileke/vendora/internal/domains/inventory/domain"
	ordersmemory "github.com/olamileke/vendora/internal/domains/orders/adapters/memory"
	ordersapp "github.com/olamileke/vendora/internal/domains/orders/application"
	ordersdomain "github.com/olamileke/vendora/internal/domains/orders/domain"
	ordersports "github.com/olamileke/vendora/internal/domains/orders/ports"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/paystack"
	"github.com/olamileke/vendora/internal/domains/payments/application"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	shippingmemory "github.com/olamileke/vendora/internal/domains/shipping/adapters/memory"
	shippingdomain "github.com/olamileke/vendora/internal/domains/shipping/domain"
)

const secret = "sk_test_secret"

type webhookFixture struct {
	router *gin.Engine
	orders ordersports.Service
	order  *ordersdomain.Order
}

// newWebhookFixture runs the real order service over memory storage with
// the real Paystack webhook handler mounted, so tests exercise the whole
// ingestion path short of the database.
func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	inventory := inventorymemory.NewAccessor()
	inventory.Put(inventorydomain.Variant{ID: "v-1", ProductID: "p-1", ProductName: "Ankara Shirt", BasePrice: 500000, Stock: 5})
	shipping := shippingmemory.NewRepository()
	shipping.Put(shippingdomain.Zone{ID: "lagos", Name: "Lagos", Fee: 150000, Currency: "NGN"})
	orderService := ordersapp.NewService(ordersmemory.NewRepository(inventory), inventory, shipping)

	order, err := orderService.Create(context.Background(), ordersports.CreateOrderInput{
		ShippingZoneID:  "lagos",
		ShippingAddress: ordersdomain.Address{FullName: "Ada Obi", Email: "ada@example.com", Line1: "12 Marina Rd", City: "Lagos", Country: "NG"},
		Items:           []ordersports.CreateOrderLine{{VariantID: "v-1", Quantity: 1}},
	})
	require.NoError(t, err)

	registry := application.NewRegistry()
	registry.Register(domain.ProviderPaystack, nil, paystack.NewWebhook(secret))
	paymentService := application.NewService(registry, orderService, nil)

	router := gin.New()
	NewHandler(paymentService).Register(router)
	return &webhookFixture{router: router, orders: orderService, order: order}
}

func (f *webhookFixture) deliver(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/paystack", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(paystack.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func chargeSuccess(orderID, reference string) []byte {
	body, _ := json.Marshal(map[string]any{
		"event": "charge.success",
		"data": map[string]any{
			"reference": reference,
			"status":    "success",
			"metadata":  map[string]string{"orderId": orderID},
		},
	})
	return body
}

func TestWebhook_ValidSignatureSettlesOrder(t *testing.T) {
	f := newWebhookFixture(t)
	body := chargeSuccess(f.order.ID, "ref-1")

	rec := f.deliver(t, body, sign(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())

	settled, err := f.orders.GetByID(context.Background(), f.order.ID)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.PaymentPaid, settled.PaymentStatus)
	require.Equal(t, "paystack", settled.PaymentProvider)
	require.Equal(t, "ref-1", settled.PaymentReference)
}

func TestWebhook_InvalidSignatureRejectsWithoutSideEffects(t *testing.T) {
	f := newWebhookFixture(t)
	body := chargeSuccess(f.order.ID, "ref-1")

	rec := f.deliver(t, body, "deadbeef")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.deliver(t, body, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	untouched, err := f.orders.GetByID(context.Background(), f.order.ID)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.PaymentPending, untouched.PaymentStatus)
}

func TestWebhook_DuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newWebhookFixture(t)
	first := chargeSuccess(f.order.ID, "ref-1")
	require.Equal(t, http.StatusOK, f.deliver(t, first, sign(first)).Code)

	// Redelivery with a different reference must not rewrite the settled row.
	second := chargeSuccess(f.order.ID, "ref-2")
	require.Equal(t, http.StatusOK, f.deliver(t, second, sign(second)).Code)

	settled, err := f.orders.GetByID(context.Background(), f.order.ID)
	require.NoError(t, err)
	require.Equal(t, ordersdomain.PaymentPaid, settled.PaymentStatus)
	require.Equal(t, "ref-1", settled.PaymentReference)
}

func TestWebhook_UnknownOrderStillAcks(t *testing.T) {
	f := newWebhookFixture(t)
	body := chargeSuccess("no-such-order", "ref-1")

	rec := f.deliver(t, body, sign(body))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_UnknownProvider(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook/stripe", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInitialize_ValidationErrors(t *testing.T) {
	f := newWebhookFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/payments/initialize",
		bytes.NewReader([]byte(`{"orderId":"o-1","email":"not-an-email","amount":0,"provider":"paystack"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
