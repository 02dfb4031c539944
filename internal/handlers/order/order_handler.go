package order

import (
	"net/http"
	"strconv"

	"toolhub-service/internal/domain/order"
	"toolhub-service/internal/middleware"
	"toolhub-service/internal/pkg/ratelimit"
	"toolhub-service/internal/pkg/response"
	service "toolhub-service/internal/service/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *service.OrderService
	limiter      *ratelimit.Limiter
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, limiter *ratelimit.Limiter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		limiter:      limiter,
		logger:       logger,
	}
}

// Checkout prices a plan purchase and opens a gateway order for it.
// Fully discounted orders settle immediately.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req order.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.orderService.Checkout(
		c.Request.Context(),
		middleware.MustGetIdentityID(c),
		middleware.MustGetEmail(c),
		&req,
	)
	if err != nil {
		response.FromError(c, "checkout failed", err)
		return
	}

	// A coupon that survived checkout was legitimate, so the caller's
	// validation attempt counter starts over.
	if req.CouponCode != "" && h.limiter != nil {
		if err := h.limiter.ResetCouponAttempts(c.Request.Context(), c.ClientIP()); err != nil {
			h.logger.Warn("failed to reset coupon attempt counter",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
		}
	}

	response.Success(c, http.StatusCreated, "order created", result)
}

// VerifyPayment settles a pending order from the gateway's signed result
func (h *OrderHandler) VerifyPayment(c *gin.Context) {
	var req order.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	settled, err := h.orderService.VerifyPayment(
		c.Request.Context(),
		middleware.MustGetIdentityID(c),
		middleware.MustGetEmail(c),
		&req,
	)
	if err != nil {
		response.FromError(c, "payment verification failed", err)
		return
	}

	response.Success(c, http.StatusOK, "payment verified", settled)
}

// GetOrder retrieves a single order. Users see only their own orders.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid order ID", err)
		return
	}

	o, err := h.orderService.GetOrder(
		c.Request.Context(),
		middleware.MustGetIdentityID(c),
		middleware.IsAdmin(c),
		orderID,
	)
	if err != nil {
		response.FromError(c, "order not found", err)
		return
	}

	response.Success(c, http.StatusOK, "order retrieved", o)
}

// ListOrders retrieves the caller's order history
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var filters order.OrderListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), middleware.MustGetIdentityID(c), &filters)
	if err != nil {
		response.FromError(c, "failed to list orders", err)
		return
	}

	response.Success(c, http.StatusOK, "orders retrieved", result)
}

// GetStats retrieves order statistics (admin only)
func (h *OrderHandler) GetStats(c *gin.Context) {
	stats, err := h.orderService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to get order stats", err)
		return
	}

	response.Success(c, http.StatusOK, "order stats retrieved", stats)
}
