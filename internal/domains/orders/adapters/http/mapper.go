package http

import (
	"time"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

type addressPayload struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"required,email"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country" binding:"required"`
}

type createOrderItemPayload struct {
	VariantID string `json:"variantId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	UserID          string                   `json:"userId"`
	ShippingZoneID  string                   `json:"shippingZoneId" binding:"required"`
	ShippingAddress addressPayload           `json:"shippingAddress" binding:"required"`
	Items           []createOrderItemPayload `json:"items" binding:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type orderItemView struct {
	VariantID    string `json:"variantId"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	VariantSize  string `json:"variantSize"`
	VariantColor string `json:"variantColor"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unitPrice"`
	Total        int64  `json:"total"`
}

type orderView struct {
	ID               string          `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	UserID           string          `json:"userId,omitempty"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"paymentStatus"`
	PaymentProvider  string          `json:"paymentProvider,omitempty"`
	PaymentReference string          `json:"paymentReference,omitempty"`
	Subtotal         int64           `json:"subtotal"`
	ShippingFee      int64           `json:"shippingFee"`
	Discount         int64           `json:"discount"`
	Total            int64           `json:"total"`
	Currency         string          `json:"currency"`
	ShippingAddress  addressPayload  `json:"shippingAddress"`
	Items            []orderItemView `json:"items"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func toCreateInput(req createOrderRequest) ports.CreateOrderInput {
	input := ports.CreateOrderInput{
		UserID:         req.UserID,
		ShippingZoneID: req.ShippingZoneID,
		ShippingAddress: domain.Address{
			FullName:   req.ShippingAddress.FullName,
			Phone:      req.ShippingAddress.Phone,
			Email:      req.ShippingAddress.Email,
			Line1:      req.ShippingAddress.Line1,
			Line2:      req.ShippingAddress.Line2,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, ports.CreateOrderLine{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	return input
}

func toOrderView(order *domain.Order) orderView {
	view := orderView{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentProvider:  order.PaymentProvider,
		PaymentReference: order.PaymentReference,
		Subtotal:         order.Subtotal,
		ShippingFee:      order.ShippingFee,
		Discount:         order.Discount,
		Total:            order.Total,
		Currency:         order.Currency,
		ShippingAddress: addressPayload{
			FullName:   order.ShippingAddress.FullName,
			Phone:      order.ShippingAddress.Phone,
			Email:      order.ShippingAddress.Email,
			Line1:      order.ShippingAddress.Line1,
			Line2:      order.ShippingAddress.Line2,
			City:       order.ShippingAddress.City,
			State:      order.ShippingAddress.State,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderItemView{
			VariantID:    item.VariantID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			VariantSize:  item.VariantSize,
			VariantColor: item.VariantColor,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Total:        item.Total,
		})
	}
	return view
}
