package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	inventoryports "github.com/olamileke/vendora/internal/domains/inventory/ports"
	"github.com/olamileke/vendora/internal/domains/orders/application"
	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
	shippingports "github.com/olamileke/vendora/internal/domains/shipping/ports"
	apierrors "github.com/olamileke/vendora/internal/shared/errors"
)

// Handler exposes the order use cases over gin.
type Handler struct {
	service   ports.Service
	responder *apierrors.ChainedResponder
}

// NewHandler wires the handler with its error mapping.
func NewHandler(service ports.Service) *Handler {
	return &Handler{
		service:   service,
		responder: apierrors.NewChainedResponder("", mapOrderError),
	}
}

// Register mounts the order routes.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/orders", h.Create)
	router.GET("/orders/:id", h.GetByID)
	router.GET("/orders/track/:orderNumber", h.Track)
	router.PUT("/orders/:id/status", h.UpdateStatus)
}

// Create places an order. The whole cart is reserved atomically; any
// failure leaves nothing behind.
func (h *Handler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := h.service.Create(c.Request.Context(), toCreateInput(req))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderView(order))
}

// GetByID reads an order by internal identifier.
func (h *Handler) GetByID(c *gin.Context) {
	order, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// Track reads an order by its customer-facing number.
func (h *Handler) Track(c *gin.Context) {
	order, err := h.service.TrackByNumber(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

// UpdateStatus applies a staff-driven fulfillment transition.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.responder.BadRequest(c, err.Error())
		return
	}
	order, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		h.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	var stockErr *ports.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return apierrors.ErrValidation.WithDetail(stockErr.Error()), true
	case errors.Is(err, application.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("order not found"), true
	case errors.Is(err, inventoryports.ErrVariantNotFound):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, shippingports.ErrZoneNotFound):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}
