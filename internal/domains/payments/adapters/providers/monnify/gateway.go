// Package monnify adapts the Monnify collection API to the gateway port.
package monnify

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/olamileke/vendora/internal/clients/http/rest"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
)

const DefaultBaseURL = "https://sandbox.monnify.com"

var _ ports.Gateway = (*Gateway)(nil)

// Gateway calls Monnify. Monnify authenticates with a short-lived token
// exchanged before each call, and takes amounts in major units (naira)
// rather than kobo.
type Gateway struct {
	client       *rest.Client
	apiKey       string
	secretKey    string
	contractCode string
}

// NewGateway wires the Monnify adapter over a shared REST client.
func NewGateway(client *rest.Client, apiKey, secretKey, contractCode string) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("monnify: rest client is required")
	}
	if apiKey == "" || secretKey == "" || contractCode == "" {
		return nil, errors.New("monnify: api key, secret key, and contract code are required")
	}
	return &Gateway{client: client, apiKey: apiKey, secretKey: secretKey, contractCode: contractCode}, nil
}

type loginResponse struct {
	RequestSuccessful bool `json:"requestSuccessful"`
	ResponseBody      struct {
		AccessToken string `json:"accessToken"`
	} `json:"responseBody"`
}

type initTransactionRequest struct {
	Amount             float64 `json:"amount"`
	CustomerName       string  `json:"customerName,omitempty"`
	CustomerEmail      string  `json:"customerEmail"`
	PaymentReference   string  `json:"paymentReference"`
	PaymentDescription string  `json:"paymentDescription"`
	CurrencyCode       string  `json:"currencyCode"`
	ContractCode       string  `json:"contractCode"`
	RedirectURL        string  `json:"redirectUrl,omitempty"`
}

type initTransactionResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		CheckoutURL          string `json:"checkoutUrl"`
		TransactionReference string `json:"transactionReference"`
		PaymentReference     string `json:"paymentReference"`
	} `json:"responseBody"`
}

type queryTransactionResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      struct {
		PaymentStatus    string `json:"paymentStatus"`
		PaymentReference string `json:"paymentReference"`
	} `json:"responseBody"`
}

// Initialize exchanges a token, then opens a Monnify checkout session.
func (g *Gateway) Initialize(ctx context.Context, req domain.InitializeRequest) (*domain.InitializeResult, error) {
	token, err := g.login(ctx)
	if err != nil {
		return nil, err
	}
	reference := domain.BuildReference(req.OrderID)
	var resp initTransactionResponse
	err = g.client.DoJSON(ctx, http.MethodPost, "/api/v1/merchant/transactions/init-transaction",
		bearer(token), initTransactionRequest{
			Amount:             float64(req.Amount) / 100, // kobo -> naira
			CustomerEmail:      req.Email,
			PaymentReference:   reference,
			PaymentDescription: "Order " + req.OrderID,
			CurrencyCode:       "NGN",
			ContractCode:       g.contractCode,
			RedirectURL:        req.CallbackURL,
		}, &resp)
	if err != nil {
		return nil, fmt.Errorf("%w: monnify initialize: %w", ports.ErrProvider, err)
	}
	if !resp.RequestSuccessful || resp.ResponseBody.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: monnify initialize rejected: %s", ports.ErrProvider, resp.ResponseMessage)
	}
	return &domain.InitializeResult{
		Provider:   domain.ProviderMonnify,
		PaymentURL: resp.ResponseBody.CheckoutURL,
		Reference:  resp.ResponseBody.PaymentReference,
	}, nil
}

// Verify queries a transaction by payment reference.
func (g *Gateway) Verify(ctx context.Context, reference string) (*domain.VerifyResult, error) {
	token, err := g.login(ctx)
	if err != nil {
		return nil, err
	}
	var resp queryTransactionResponse
	path := "/api/v2/merchant/transactions/query?paymentReference=" + url.QueryEscape(reference)
	if err := g.client.DoJSON(ctx, http.MethodGet, path, bearer(token), nil, &resp); err != nil {
		return nil, fmt.Errorf("%w: monnify verify: %w", ports.ErrProvider, err)
	}
	if !resp.RequestSuccessful {
		return nil, fmt.Errorf("%w: monnify verify rejected: %s", ports.ErrProvider, resp.ResponseMessage)
	}
	return &domain.VerifyResult{
		Provider:  domain.ProviderMonnify,
		Reference: resp.ResponseBody.PaymentReference,
		Status:    resp.ResponseBody.PaymentStatus,
		Paid:      resp.ResponseBody.PaymentStatus == "PAID",
	}, nil
}

// login performs the basic-auth token exchange Monnify requires per call.
func (g *Gateway) login(ctx context.Context) (string, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(g.apiKey + ":" + g.secretKey))
	var resp loginResponse
	err := g.client.DoJSON(ctx, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"Authorization": "Basic " + credentials}, struct{}{}, &resp)
	if err != nil {
		return "", fmt.Errorf("%w: monnify login: %w", ports.ErrProvider, err)
	}
	if !resp.RequestSuccessful || resp.ResponseBody.AccessToken == "" {
		return "", fmt.Errorf("%w: monnify login rejected", ports.ErrProvider)
	}
	return resp.ResponseBody.AccessToken, nil
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
