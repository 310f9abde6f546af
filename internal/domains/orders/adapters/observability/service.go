package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

const tracerName = "github.com/olamileke/vendora/internal/domains/orders/adapters/observability/service"

// Service decorates the orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Create places an order with instrumentation.
func (s *Service) Create(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.Create", attribute.Int("order.items.count", len(input.Items)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.Int("items", len(input.Items)))
	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order")
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.String("order.number", result.OrderNumber))
	s.logInfo(ctx, "order placed",
		slog.String("order.number", result.OrderNumber),
		slog.Int64("order.total", result.Total))
	return result, nil
}

// GetByID loads a single order.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("order.id", id))
	defer span.End()

	result, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", id))
	}
	return result, nil
}

// TrackByNumber loads an order by its customer-facing number.
func (s *Service) TrackByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.TrackByNumber", attribute.String("order.number", orderNumber))
	defer span.End()

	result, err := s.inner.TrackByNumber(ctx, orderNumber)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to track order", slog.String("order.number", orderNumber))
	}
	return result, nil
}

// UpdateStatus applies a staff-driven fulfillment transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateStatus",
		attribute.String("order.id", id),
		attribute.String("order.status.requested", string(status)),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.id", id), slog.String("status", string(status)))
	result, err := s.inner.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.id", id))
	}
	s.metrics.recordStatusChanged(ctx, result.Status)
	return result, nil
}

// ApplyPaymentSuccess records a verified successful payment outcome.
func (s *Service) ApplyPaymentSuccess(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ApplyPaymentSuccess",
		attribute.String("order.id", orderID),
		attribute.String("payment.provider", provider),
	)
	defer span.End()

	s.logInfo(ctx, "applying payment success",
		slog.String("order.id", orderID),
		slog.String("payment.provider", provider),
		slog.String("payment.reference", providerReference))
	result, err := s.inner.ApplyPaymentSuccess(ctx, orderID, provider, providerReference)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply payment success", slog.String("order.id", orderID))
	}
	s.metrics.recordPaymentSettled(ctx, result.PaymentStatus)
	s.logInfo(ctx, "payment success applied",
		slog.String("order.number", result.OrderNumber),
		slog.String("payment.status", string(result.PaymentStatus)))
	return result, nil
}

// ApplyPaymentFailure records a verified failed payment outcome.
func (s *Service) ApplyPaymentFailure(ctx context.Context, orderID, provider, providerReference string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.ApplyPaymentFailure",
		attribute.String("order.id", orderID),
		attribute.String("payment.provider", provider),
	)
	defer span.End()

	s.logInfo(ctx, "applying payment failure",
		slog.String("order.id", orderID),
		slog.String("payment.provider", provider))
	result, err := s.inner.ApplyPaymentFailure(ctx, orderID, provider, providerReference)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to apply payment failure", slog.String("order.id", orderID))
	}
	s.metrics.recordPaymentSettled(ctx, result.PaymentStatus)
	return result, nil
}

// MarkRefunded flags a settled payment as refunded.
func (s *Service) MarkRefunded(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.MarkRefunded", attribute.String("order.id", orderID))
	defer span.End()

	s.logInfo(ctx, "marking order refunded", slog.String("order.id", orderID))
	result, err := s.inner.MarkRefunded(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to mark order refunded", slog.String("order.id", orderID))
	}
	s.metrics.recordPaymentSettled(ctx, result.PaymentStatus)
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated   metric.Int64Counter
	statusChanges   metric.Int64Counter
	paymentsSettled metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders placed"))
	statusChanges, _ := m.Int64Counter("orders.service.status_changes", metric.WithDescription("Number of fulfillment status changes"))
	paymentsSettled, _ := m.Int64Counter("orders.service.payments_settled", metric.WithDescription("Number of payment reconciliation outcomes"))
	return serviceMetrics{
		ordersCreated:   ordersCreated,
		statusChanges:   statusChanges,
		paymentsSettled: paymentsSettled,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	addCounter(ctx, m.ordersCreated, 1)
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusChanges, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordPaymentSettled(ctx context.Context, status domain.PaymentStatus) {
	addCounter(ctx, m.paymentsSettled, 1, attribute.String("payment.status", string(status)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
