package plan

import (
	"net/http"
	"strconv"

	"toolhub-service/internal/domain/plan"
	"toolhub-service/internal/pkg/response"
	service "toolhub-service/internal/service/plan"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{
		planService: planService,
	}
}

// ========== Public Endpoints ==========

// ListPublicPlans retrieves the active plans for the pricing page
func (h *PlanHandler) ListPublicPlans(c *gin.Context) {
	plans, err := h.planService.ListPublicPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", plans)
}

// GetPlan retrieves a single plan by ID
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	p, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		response.FromError(c, "plan not found", err)
		return
	}

	response.Success(c, http.StatusOK, "plan retrieved", p)
}

// ========== Admin Only Endpoints ==========

// ListPlans retrieves plans with filters (admin only)
func (h *PlanHandler) ListPlans(c *gin.Context) {
	var filters plan.PlanListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.planService.ListPlans(c.Request.Context(), &filters)
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", result)
}

// CreatePlan creates a new plan (admin only)
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req plan.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created successfully", p)
}

// UpdatePlan updates a plan (admin only)
func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	planID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	var req plan.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := h.planService.UpdatePlan(c.Request.Context(), planID, &req)
	if err != nil {
		response.FromError(c, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated successfully", p)
}

// ActivatePlan makes a plan purchasable again (admin only)
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	planID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	if err := h.planService.ActivatePlan(c.Request.Context(), planID); err != nil {
		response.FromError(c, "failed to activate plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan activated", nil)
}

// DeactivatePlan hides a plan from the pricing page (admin only)
func (h *PlanHandler) DeactivatePlan(c *gin.Context) {
	planID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	if err := h.planService.DeactivatePlan(c.Request.Context(), planID); err != nil {
		response.FromError(c, "failed to deactivate plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan deactivated", nil)
}

// DeletePlan removes a plan no order references (admin only)
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid plan ID", err)
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		response.FromError(c, "failed to delete plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan deleted", nil)
}

// GetStats retrieves plan statistics (admin only)
func (h *PlanHandler) GetStats(c *gin.Context) {
	stats, err := h.planService.GetStats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to get plan stats", err)
		return
	}

	response.Success(c, http.StatusOK, "plan stats retrieved", stats)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
