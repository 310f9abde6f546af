package notifications

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	notifactivities "github.com/olamileke/vendora/internal/durable/temporal/activities/notifications"
)

const (
	// OrderConfirmationWorkflowName is the public identifier for registering the workflow.
	OrderConfirmationWorkflowName = "notifications.workflows.OrderConfirmation"
	// OrderConfirmationTaskQueue is the queue consumed by the worker delivering notifications.
	OrderConfirmationTaskQueue = "ORDER_CONFIRMATION"
)

// OrderConfirmationWorkflowInput captures the order snapshot to confirm.
type OrderConfirmationWorkflowInput struct {
	Order   domain.Order
	TraceID string
}

// OrderConfirmationWorkflow delivers the confirmation email with durable
// retries, so a flaky mail service does not silently drop a confirmation.
func OrderConfirmationWorkflow(ctx workflow.Context, input OrderConfirmationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderConfirmationWorkflow started", withTraceID(input.TraceID, "orderNumber", input.Order.OrderNumber)...)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    5 * time.Minute,
			MaximumAttempts:    8,
		},
	})
	if err := workflow.ExecuteActivity(ctx, notifactivities.SendOrderConfirmationActivityName, input.Order).Get(ctx, nil); err != nil {
		logger.Error("OrderConfirmationWorkflow failed", withTraceID(input.TraceID, "orderNumber", input.Order.OrderNumber, "error", err)...)
		return err
	}
	logger.Info("OrderConfirmationWorkflow completed", withTraceID(input.TraceID, "orderNumber", input.Order.OrderNumber)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
