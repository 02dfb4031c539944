package coupon

import (
	"net/http"
	"strconv"

	"toolhub-service/internal/domain/coupon"
	"toolhub-service/internal/middleware"
	"toolhub-service/internal/pkg/ratelimit"
	"toolhub-service/internal/pkg/response"
	service "toolhub-service/internal/service/coupon"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CouponHandler struct {
	couponService *service.CouponService
	limiter       *ratelimit.Limiter
	logger        *zap.Logger
}

func NewCouponHandler(couponService *service.CouponService, limiter *ratelimit.Limiter, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		limiter:       limiter,
		logger:        logger,
	}
}

// ========== User Endpoints ==========

// ValidateCoupon checks a coupon against an order amount. Attempts are
// rate limited per client IP so codes cannot be brute forced.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	if h.limiter != nil {
		allowed, remaining, err := h.limiter.CheckCouponAttempt(c.Request.Context(), c.ClientIP())
		if err != nil {
			h.logger.Warn("coupon rate limit check failed", zap.Error(err))
		} else if !allowed {
			response.Error(c, http.StatusTooManyRequests, "too many coupon attempts, try again later", nil,
				map[string]interface{}{"remaining_attempts": remaining})
			return
		}
	}

	var req coupon.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.couponService.Validate(c.Request.Context(), req.Code, req.OrderAmount)
	if err != nil {
		response.FromError(c, "coupon validation failed", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon is valid", result)
}

// ========== Admin Only Endpoints ==========

// CreateCoupon creates a new coupon (admin only)
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	created, err := h.couponService.CreateCoupon(c.Request.Context(), middleware.MustGetIdentityID(c), &req)
	if err != nil {
		response.FromError(c, "failed to create coupon", err)
		return
	}

	response.Success(c, http.StatusCreated, "coupon created successfully", created)
}

// GetCoupon retrieves a coupon by ID (admin only)
func (h *CouponHandler) GetCoupon(c *gin.Context) {
	couponID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	found, err := h.couponService.GetCoupon(c.Request.Context(), couponID)
	if err != nil {
		response.FromError(c, "coupon not found", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon retrieved", found)
}

// ListCoupons retrieves coupons with filters (admin only)
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	var filters coupon.CouponListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.couponService.ListCoupons(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list coupons", err)
		return
	}

	response.Success(c, http.StatusOK, "coupons retrieved", result)
}

// UpdateCoupon updates a coupon's editable fields (admin only)
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	couponID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	updated, err := h.couponService.UpdateCoupon(c.Request.Context(), couponID, &req)
	if err != nil {
		response.FromError(c, "failed to update coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon updated successfully", updated)
}

// ActivateCoupon makes a coupon redeemable again (admin only)
func (h *CouponHandler) ActivateCoupon(c *gin.Context) {
	couponID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	if err := h.couponService.ActivateCoupon(c.Request.Context(), couponID); err != nil {
		response.FromError(c, "failed to activate coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon activated", nil)
}

// DeactivateCoupon stops further redemptions (admin only)
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	couponID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	if err := h.couponService.DeactivateCoupon(c.Request.Context(), couponID); err != nil {
		response.FromError(c, "failed to deactivate coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon deactivated", nil)
}

// DeleteCoupon removes an unused coupon (admin only)
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	couponID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid coupon ID", err)
		return
	}

	if err := h.couponService.DeleteCoupon(c.Request.Context(), couponID); err != nil {
		response.FromError(c, "failed to delete coupon", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon deleted", nil)
}

// GetStats retrieves coupon statistics (admin only)
func (h *CouponHandler) GetStats(c *gin.Context) {
	stats, err := h.couponService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to get coupon stats", err)
		return
	}

	response.Success(c, http.StatusOK, "coupon stats retrieved", stats)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
