// Package kafka publishes order lifecycle events for downstream consumers
// (analytics, fulfillment dashboards). Publishing is fire-and-forget from
// the order core's perspective.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

const (
	// Topic carries every order lifecycle event, keyed by order number so
	// one order's events stay in partition order.
	Topic = "vendora.orders"

	EventOrderCreated   = "order.created"
	EventPaymentSettled = "payment.settled"
)

var _ ports.EventPublisher = (*Producer)(nil)

// Producer writes order events to Kafka.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a producer against the given brokers. Close releases
// the underlying writer.
func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

type envelope struct {
	Event         string    `json:"event"`
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Total         int64     `json:"total"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// PublishOrderCreated emits the placement event.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, EventOrderCreated, order)
}

// PublishPaymentSettled emits the reconciliation outcome event.
func (p *Producer) PublishPaymentSettled(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, EventPaymentSettled, order)
}

func (p *Producer) publish(ctx context.Context, event string, order *domain.Order) error {
	payload, err := json.Marshal(envelope{
		Event:         event,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Total:         order.Total,
		Currency:      order.Currency,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event, err)
	}
	return nil
}
