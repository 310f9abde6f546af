// Package mailer calls the transactional email service that renders and
// sends order confirmations. Delivery is best-effort from the order core's
// perspective; the caller decides what to do with failures.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olamileke/vendora/internal/clients/http/rest"
	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

var _ ports.Notifier = (*Client)(nil)

// Client posts confirmation requests to the notification service.
type Client struct {
	rest *rest.Client
}

// NewClient instantiates the mailer client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	restClient, err := rest.New(baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("build mailer client: %w", err)
	}
	return &Client{rest: restClient}, nil
}

type confirmationItem struct {
	ProductName  string `json:"productName"`
	VariantSize  string `json:"variantSize,omitempty"`
	VariantColor string `json:"variantColor,omitempty"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
}

type confirmationPayload struct {
	OrderNumber string             `json:"orderNumber"`
	Email       string             `json:"email"`
	FullName    string             `json:"fullName"`
	Total       int64              `json:"total"`
	Currency    string             `json:"currency"`
	Items       []confirmationItem `json:"items"`
}

// SendOrderConfirmation pushes the confirmation email request.
func (c *Client) SendOrderConfirmation(ctx context.Context, order *domain.Order) error {
	if c == nil || c.rest == nil {
		return errors.New("mailer client not configured")
	}
	if order == nil {
		return errors.New("order is nil")
	}
	payload := confirmationPayload{
		OrderNumber: order.OrderNumber,
		Email:       order.ShippingAddress.Email,
		FullName:    order.ShippingAddress.FullName,
		Total:       order.Total,
		Currency:    order.Currency,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, confirmationItem{
			ProductName:  item.ProductName,
			VariantSize:  item.VariantSize,
			VariantColor: item.VariantColor,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}
	if err := c.rest.DoJSON(ctx, http.MethodPost, "/notifications/order-confirmation", nil, payload, nil); err != nil {
		return fmt.Errorf("call notification service: %w", err)
	}
	return nil
}
