// Package paystack adapts the Paystack transaction API to the gateway port.
package paystack

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olamileke/vendora/internal/clients/http/rest"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

const DefaultBaseURL = "https://api.paystack.co"

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls Paystack with a static secret key. Paystack takes amounts
// in kobo, which is already our internal unit.
type Gateway struct {
	client    *rest.Client
	secretKey string
}

// NewGateway wires the Paystack adapter over a shared REST client.
func NewGateway(client *rest.Client, secretKey string) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("paystack: rest client is required")
	}
	if secretKey == "" {
		return nil, errors.New("paystack: secret key is required")
	}
	return &Gateway{client: client, secretKey: secretKey}, nil
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Initialize opens a Paystack checkout session and returns the redirect URL.
func (g *Gateway) Initialize(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	reference := domain.BuildReference(req.OrderID)
	var resp initializeResponse
	err := g.client.DoJSON(ctx, http.MethodPost, "/transaction/initialize", g.headers(), initializeRequest{
		Email:       req.Email,
		Amount:      req.Amount,
		Reference:   reference,
		CallbackURL: req.CallbackURL,
		Metadata:    map[string]string{"orderId": req.OrderID},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: paystack initialize: %w", ports.ErrProvider, err)
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: paystack initialize rejected: %s", ports.ErrProvider, resp.Message)
	}
	return &domain.InitializeResult{
		Provider:   domain.ProviderPaystack,
		PaymentURL: resp.Data.AuthorizationURL,
		Reference:  resp.Data.Reference,
	}, nil
}

// Verify looks a transaction up by reference.
func (g *Gateway) Verify(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	var resp verifyResponse
	err := g.client.DoJSON(ctx, http.MethodGet, "/transaction/verify/"+reference, g.headers(), nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: paystack verify: %w", ports.ErrProvider, err)
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: paystack verify rejected: %s", ports.ErrProvider, resp.Message)
	}
	return &domain.VerifyResult{
		Provider:  domain.ProviderPaystack,
		Reference: resp.Data.Reference,
		Status:    resp.Data.Status,
		Paid:      resp.Data.Status == "success",
	}, nil
}

func (g *Gateway) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + g.secretKey}
}
