package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	ordersdomain "github.com/olamileke/vendora/internal/domains/orders/domain"
	ordersports "github.com/olamileke/vendora/internal/domains/orders/ports"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

type stubGateway struct {
	provider domain.Provider
	lastInit domain.InitializeRequest
}

func (g *stubGateway) Initialize(_ context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	g.lastInit = req
	return &domain.InitializeResult{
		Provider:   g.provider,
		PaymentURL: "https://checkout.example.com/" + req.OrderID,
		Reference:  req.OrderID + "-1",
	}, nil
}

func (g *stubGateway) Verify(_ context.Context, reference string) (*domain.VerifyResult, error) {
	return &domain.VerifyResult{Provider: g.provider, Reference: reference, Status: "success", Paid: true}, nil
}

type stubWebhook struct {
	verifyErr error
	event     *domain.WebhookEvent
	parseErr  error
}

func (w *stubWebhook) VerifySignature(http.Header, []byte) error { return w.verifyErr }

func (w *stubWebhook) ParseEvent([]byte) (*domain.WebhookEvent, error) {
	return w.event, w.parseErr
}

type reconcileCall struct {
	orderID   string
	provider  string
	reference string
	succeeded bool
}

// recordingOrders captures reconciliation dispatches without any storage.
type recordingOrders struct {
	ordersports.Service
	calls        []reconcileCall
	reconcileErr error
}

func (r *recordingOrders) ApplyPaymentSuccess(_ context.Context, orderID, provider, reference string) (*ordersdomain.Order, error) {
	r.calls = append(r.calls, reconcileCall{orderID, provider, reference, true})
	return &ordersdomain.Order{ID: orderID}, r.reconcileErr
}

func (r *recordingOrders) ApplyPaymentFailure(_ context.Context, orderID, provider, reference string) (*ordersdomain.Order, error) {
	r.calls = append(r.calls, reconcileCall{orderID, provider, reference, false})
	return &ordersdomain.Order{ID: orderID}, r.reconcileErr
}

func fullRegistry(webhook ports.WebhookHandler) *Registry {
	registry := NewRegistry()
	for _, provider := range domain.Providers() {
		registry.Register(provider, &stubGateway{provider: provider}, webhook)
	}
	return registry
}

func TestRegistryValidate(t *testing.T) {
	registry := NewRegistry()
	require.Error(t, registry.Validate())

	registry = fullRegistry(&stubWebhook{})
	require.NoError(t, registry.Validate())
}

func TestInitialize_UnknownProvider(t *testing.T) {
	svc := NewService(fullRegistry(&stubWebhook{}), &recordingOrders{}, nil)

	_, err := svc.Initialize(context.Background(), InitializeInput{Provider: "stripe", OrderID: "o-1", Email: "a@b.c", Amount: 1000})
	require.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestInitialize_NormalizesProviderCase(t *testing.T) {
	svc := NewService(fullRegistry(&stubWebhook{}), &recordingOrders{}, nil)

	result, err := svc.Initialize(context.Background(), InitializeInput{Provider: "  Paystack ", OrderID: "o-1", Email: "a@b.c", Amount: 1000})
	require.NoError(t, err)
	require.Equal(t, domain.ProviderPaystack, result.Provider)
	require.Equal(t, "https://checkout.example.com/o-1", result.PaymentURL)
}

func TestInitialize_UsesConfiguredCallbackURL(t *testing.T) {
	gateway := &stubGateway{provider: domain.ProviderPaystack}
	registry := NewRegistry()
	registry.Register(domain.ProviderPaystack, gateway, &stubWebhook{})
	svc := NewService(registry, &recordingOrders{}, nil,
		WithCallbackURL("https://shop.example.com/payment/complete"))

	_, err := svc.Initialize(context.Background(), InitializeInput{Provider: "paystack", OrderID: "o-1", Email: "a@b.c", Amount: 1000})
	require.NoError(t, err)
	require.Equal(t, "https://shop.example.com/payment/complete", gateway.lastInit.CallbackURL)
}

func TestInitialize_CallerCallbackURLOverridesConfigured(t *testing.T) {
	gateway := &stubGateway{provider: domain.ProviderPaystack}
	registry := NewRegistry()
	registry.Register(domain.ProviderPaystack, gateway, &stubWebhook{})
	svc := NewService(registry, &recordingOrders{}, nil,
		WithCallbackURL("https://shop.example.com/payment/complete"))

	_, err := svc.Initialize(context.Background(), InitializeInput{
		Provider: "paystack", OrderID: "o-1", Email: "a@b.c", Amount: 1000,
		CallbackURL: "https://mobile.example.com/return",
	})
	require.NoError(t, err)
	require.Equal(t, "https://mobile.example.com/return", gateway.lastInit.CallbackURL)
}

func TestInitialize_UnconfiguredProvider(t *testing.T) {
	registry := NewRegistry()
	registry.Register(domain.ProviderPaystack, &stubGateway{provider: domain.ProviderPaystack}, &stubWebhook{})
	svc := NewService(registry, &recordingOrders{}, nil)

	_, err := svc.Initialize(context.Background(), InitializeInput{Provider: "opay", OrderID: "o-1", Email: "a@b.c", Amount: 1000})
	require.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestVerify(t *testing.T) {
	svc := NewService(fullRegistry(&stubWebhook{}), &recordingOrders{}, nil)

	result, err := svc.Verify(context.Background(), "monnify", "ref-1")
	require.NoError(t, err)
	require.True(t, result.Paid)
	require.Equal(t, domain.ProviderMonnify, result.Provider)
}

func TestHandleWebhook_BadSignatureRejects(t *testing.T) {
	orders := &recordingOrders{}
	svc := NewService(fullRegistry(&stubWebhook{verifyErr: ports.ErrBadSignature}), orders, nil)

	err := svc.HandleWebhook(context.Background(), "paystack", http.Header{}, []byte(`{}`))
	require.ErrorIs(t, err, ports.ErrBadSignature)
	require.Empty(t, orders.calls)
}

func TestHandleWebhook_UnknownProviderRejects(t *testing.T) {
	orders := &recordingOrders{}
	svc := NewService(fullRegistry(&stubWebhook{}), orders, nil)

	err := svc.HandleWebhook(context.Background(), "stripe", http.Header{}, []byte(`{}`))
	require.ErrorIs(t, err, domain.ErrUnknownProvider)
	require.Empty(t, orders.calls)
}

func TestHandleWebhook_SuccessDispatchesReconciliation(t *testing.T) {
	orders := &recordingOrders{}
	webhook := &stubWebhook{event: &domain.WebhookEvent{
		Provider: domain.ProviderPaystack, OrderID: "o-1", Reference: "ref-1", Succeeded: true,
	}}
	svc := NewService(fullRegistry(webhook), orders, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "paystack", http.Header{}, []byte(`{}`)))
	require.Len(t, orders.calls, 1)
	require.Equal(t, reconcileCall{"o-1", "paystack", "ref-1", true}, orders.calls[0])
}

func TestHandleWebhook_FailureDispatchesReconciliation(t *testing.T) {
	orders := &recordingOrders{}
	webhook := &stubWebhook{event: &domain.WebhookEvent{
		Provider: domain.ProviderOPay, OrderID: "o-1", Reference: "ref-1", Succeeded: false,
	}}
	svc := NewService(fullRegistry(webhook), orders, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "opay", http.Header{}, []byte(`{}`)))
	require.Len(t, orders.calls, 1)
	require.False(t, orders.calls[0].succeeded)
}

func TestHandleWebhook_IgnoredEventAcks(t *testing.T) {
	orders := &recordingOrders{}
	webhook := &stubWebhook{event: &domain.WebhookEvent{Provider: domain.ProviderPaystack, Ignored: true}}
	svc := NewService(fullRegistry(webhook), orders, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "paystack", http.Header{}, []byte(`{}`)))
	require.Empty(t, orders.calls)
}

func TestHandleWebhook_UnparseablePayloadAcks(t *testing.T) {
	orders := &recordingOrders{}
	webhook := &stubWebhook{parseErr: errors.New("mangled json")}
	svc := NewService(fullRegistry(webhook), orders, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "paystack", http.Header{}, []byte(`not-json`)))
	require.Empty(t, orders.calls)
}

func TestHandleWebhook_ReconciliationFailureStillAcks(t *testing.T) {
	orders := &recordingOrders{reconcileErr: errors.New("db down")}
	webhook := &stubWebhook{event: &domain.WebhookEvent{
		Provider: domain.ProviderMonnify, OrderID: "o-1", Reference: "ref-1", Succeeded: true,
	}}
	svc := NewService(fullRegistry(webhook), orders, nil)

	require.NoError(t, svc.HandleWebhook(context.Background(), "monnify", http.Header{}, []byte(`{}`)))
	require.Len(t, orders.calls, 1)
}
