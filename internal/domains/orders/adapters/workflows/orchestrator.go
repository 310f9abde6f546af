package workflows

import (
	"context"
	"errors"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
	notifworkflows "github.com/olamileke/vendora/internal/durable/temporal/workflows/notifications"
)

var (
	_ ports.Notifier = (*TemporalNotifications)(nil)
	_ ports.Notifier = (*InlineNotifications)(nil)
)

// TemporalNotifications starts confirmation workflows on a Temporal
// cluster, giving delivery durable retries that outlive this process.
type TemporalNotifications struct {
	client    client.Client
	taskQueue string
}

// NewTemporalNotifications wires a Temporal client into the dispatcher.
func NewTemporalNotifications(c client.Client) *TemporalNotifications {
	return &TemporalNotifications{client: c, taskQueue: notifworkflows.OrderConfirmationTaskQueue}
}

// SendOrderConfirmation starts the durable delivery workflow. One workflow
// per order number; a redundant dispatch joins the already-running one.
func (o *TemporalNotifications) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if o == nil || o.client == nil {
		return errors.New("temporal notifications not configured")
	}
	if order == nil {
		return errors.New("order is nil")
	}
	options := client.StartWorkflowOptions{
		ID:        "order-confirmation/" + order.OrderNumber,
		TaskQueue: o.taskQueue,
	}
	_, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		notifworkflows.OrderConfirmationWorkflow,
		notifworkflows.OrderConfirmationWorkflowInput{Order: *order, TraceID: traceComponent(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil
		}
		return err
	}
	return nil
}

// InlineNotifications delivers directly without Temporal, useful for tests
// or dev fallbacks when no cluster is reachable.
type InlineNotifications struct {
	notifier ports.Notifier
}

// NewInlineNotifications wraps the underlying notifier for synchronous delivery.
func NewInlineNotifications(notifier ports.Notifier) *InlineNotifications {
	return &InlineNotifications{notifier: notifier}
}

// SendOrderConfirmation delivers in-process.
func (o *InlineNotifications) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if o == nil || o.notifier == nil {
		return errors.New("inline notifications not configured")
	}
	return o.notifier.SendOrderConfirmation(ctx, order)
}

func traceComponent(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
