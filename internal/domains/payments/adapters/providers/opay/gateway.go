// Package opay adapts the OPay cashier API to the gateway port.
package opay

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/olamileke/vendora/internal/clients/http/rest"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

const DefaultBaseURL = "https://cashierapi.opayweb.com"

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls the OPay cashier with a static public key. OPay takes
// amounts in kobo, which is already our internal unit.
type Gateway struct {
	client     *rest.Client
	publicKey  string
	merchantID string
}

// NewGateway wires the OPay adapter over a shared REST client.
func NewGateway(client *rest.Client, publicKey, merchantID string) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("opay: rest client is required")
	}
	if publicKey == "" || merchantID == "" {
		return nil, errors.New("opay: public key and merchant id are required")
	}
	return &Gateway{client: client, publicKey: publicKey, merchantID: merchantID}, nil
}

type amountPayload struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type createCashierRequest struct {
	Reference    string        `json:"reference"`
	MchShortName string        `json:"mchShortName"`
	Amount       amountPayload `json:"amount"`
	ProductName  string        `json:"productName"`
	ProductDesc  string        `json:"productDesc"`
	UserEmail    string        `json:"userEmail"`
	CallbackURL  string        `json:"callbackUrl"`
	ReturnURL    string        `json:"returnUrl,omitempty"`
	ExpireAt     int           `json:"expireAt,omitempty"`
}

type createCashierResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		CashierURL string `json:"cashierUrl"`
		Reference  string `json:"reference"`
		OrderNo    string `json:"orderNo"`
	} `json:"data"`
}

type statusRequest struct {
	Reference string `json:"reference"`
}

type statusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status    string `json:"status"`
		Reference string `json:"reference"`
	} `json:"data"`
}

// Initialize opens an OPay cashier session and returns the redirect URL.
func (g *Gateway) Initialize(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	reference := domain.BuildReference(req.OrderID)
	var resp createCashierResponse
	err := g.client.DoJSON(ctx, http.MethodPost, "/api/v3/cashier/initialize", g.headers(), createCashierRequest{
		Reference:    reference,
		MchShortName: g.merchantID,
		Amount:       amountPayload{Total: req.Amount, Currency: "NGN"},
		ProductName:  "Order " + req.OrderID,
		ProductDesc:  "Order " + req.OrderID,
		UserEmail:    req.Email,
		CallbackURL:  req.CallbackURL,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: opay initialize: %w", ports.ErrProvider, err)
	}
	if resp.Code != "00000" || resp.Data.CashierURL == "" {
		return nil, fmt.Errorf("%w: opay initialize rejected: %s", ports.ErrProvider, resp.Message)
	}
	return &domain.InitializeResult{
		Provider:   domain.ProviderOPay,
		PaymentURL: resp.Data.CashierURL,
		Reference:  resp.Data.Reference,
	}, nil
}

// Verify queries a cashier transaction by reference.
func (g *Gateway) Verify(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	var resp statusResponse
	err := g.client.DoJSON(ctx, http.MethodPost, "/api/v3/cashier/status", g.headers(), statusRequest{Reference: reference}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: opay verify: %w", ports.ErrProvider, err)
	}
	if resp.Code != "00000" {
		return nil, fmt.Errorf("%w: opay verify rejected: %s", ports.ErrProvider, resp.Message)
	}
	return &domain.VerifyResult{
		Provider:  domain.ProviderOPay,
		Reference: resp.Data.Reference,
		Status:    resp.Data.Status,
		Paid:      resp.Data.Status == "SUCCESS",
	}, nil
}

func (g *Gateway) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + g.publicKey, "MerchantId": g.merchantID}
}
