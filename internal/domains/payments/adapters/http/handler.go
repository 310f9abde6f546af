package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/olamileke/vendora/internal/domains/payments/application"
	"github.com/olamileke/vendora/internal/domains/payments/domain"
	"github.com/olamileke/vendora/internal/domains/payments/ports"
	apierrors "github.com/olamileke/vendora/internal/shared/errors"
)

// Webhook bodies are small; cap reads so a hostile caller cannot stream
// gigabytes into the signature check.
const maxWebhookBody = 1 << 20

// Handler exposes payment initialization, verification, and webhook
// ingestion over gin.
type Handler struct {
	service   *application.Service
	responder *apierrors.ChainedResponder
}

// NewHandler wires the handler with its error mapping.
func NewHandler(service *application.Service) *Handler {
	return &Handler{
		service:   service,
		responder: apierrors.NewChainedResponder("", mapPaymentError),
	}
}

// Register mounts the payment routes. Webhook endpoints are public by
// design; their only authentication is the provider signature.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/payments/initialize", h.Initialize)
	router.GET("/payments/verify/:provider/:reference", h.Verify)
	router.POST("/payments/webhook/:provider", h.Webhook)
}

type initializeRequest struct {
	OrderID     string `json:"orderId" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Provider    string `json:"provider" binding:"required"`
	CallbackURL string `json:"callbackUrl" binding:"omitempty,url"`
}

type initializeResponse struct {
	Success    bool   `json:"success"`
	PaymentURL string `json:"paymentUrl"`
	Reference  string `json:"reference"`
	Provider   string `json:"provider"`
}

type verifyResponse struct {
	Success   bool   `json:"success"`
	Status    string `json:"status"`
	Paid      bool   `json:"paid"`
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
}

// Initialize opens a checkout session with the requested provider.
func (h *Handler) Initialize(c *gin.Context) {
	var req initializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	result, err := h.service.Initialize(c.Request.Context(), application.InitializeInput{
		OrderID:     req.OrderID,
		Email:       req.Email,
		Amount:      req.Amount,
		Provider:    req.Provider,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, initializeResponse{
		Success:    true,
		PaymentURL: result.PaymentURL,
		Reference:  result.Reference,
		Provider:   string(result.Provider),
	})
}

// Verify looks up a transaction with its provider.
func (h *Handler) Verify(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context(), c.Param("provider"), c.Param("reference"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		Success:   true,
		Status:    result.Status,
		Paid:      result.Paid,
		Reference: result.Reference,
		Provider:  string(result.Provider),
	})
}

// Webhook ingests one provider callback. Signature verification gates
// everything; once the payload is trusted the endpoint always acknowledges
// receipt so transient internal errors do not trigger provider redelivery.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.responder.BadRequest(c, "failed to read request body")
		return
	}
	err = h.service.HandleWebhook(c.Request.Context(), c.Param("provider"), c.Request.Header, body)
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func mapPaymentError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return apierrors.ErrValidation.WithDetail("Invalid payment provider"), true
	case errors.Is(err, ports.ErrBadSignature), errors.Is(err, ports.ErrSecretMissing):
		// No internal detail leaks to an unauthenticated caller.
		return apierrors.ErrUnauthorized, true
	case errors.Is(err, application.ErrProviderNotConfigured):
		return apierrors.ErrUnprocessable.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrProvider):
		return apierrors.ErrUpstream.WithDetail("payment provider request failed"), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
