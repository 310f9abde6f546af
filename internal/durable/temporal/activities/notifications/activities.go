package notifications

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

// SendOrderConfirmationActivityName delivers one confirmation email.
const SendOrderConfirmationActivityName = "notifications.activities.SendOrderConfirmation"

// Activities groups activities that deliver customer notifications.
type Activities struct {
	notifier ports.Notifier
}

// NewActivities wires the notifier (usually the mailer HTTP client) into
// the Temporal activities bundle.
func NewActivities(notifier ports.Notifier) *Activities {
	return &Activities{notifier: notifier}
}

// SendOrderConfirmation delivers the confirmation for one order snapshot.
func (a *Activities) SendOrderConfirmation(ctx context.Context, order domain.Order) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.notifier == nil {
		logger.Error("notification activity not initialized", "orderNumber", order.OrderNumber)
		return errors.New("notification activity not initialized")
	}
	logger.Info("SendOrderConfirmation activity started", "orderNumber", order.OrderNumber)
	if err := a.notifier.SendOrderConfirmation(ctx, &order); err != nil {
		logger.Error("SendOrderConfirmation activity failed", "orderNumber", order.OrderNumber, "error", err)
		return err
	}
	logger.Info("SendOrderConfirmation activity completed", "orderNumber", order.OrderNumber)
	return nil
}
