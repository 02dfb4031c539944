package notification

import (
	"net/http"
	"strconv"

	"toolhub-service/internal/domain/notification"
	"toolhub-service/internal/middleware"
	"toolhub-service/internal/pkg/response"
	service "toolhub-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ========== User Endpoints ==========

// List retrieves the caller's live notifications with seen state
func (h *NotificationHandler) List(c *gin.Context) {
	var filters notification.NotificationListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	result, err := h.notificationService.List(c.Request.Context(), middleware.MustGetIdentityID(c), &filters)
	if err != nil {
		response.FromError(c, "failed to list notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "notifications retrieved", result)
}

// MarkSeen records that the caller has seen a notification
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid notification ID", err)
		return
	}

	err = h.notificationService.MarkSeen(
		c.Request.Context(),
		notificationID,
		middleware.MustGetIdentityID(c),
		middleware.MustGetEmail(c),
	)
	if err != nil {
		response.FromError(c, "failed to mark notification seen", err)
		return
	}

	response.Success(c, http.StatusOK, "notification marked seen", nil)
}

// MarkAllSeen marks every unseen notification seen for the caller
func (h *NotificationHandler) MarkAllSeen(c *gin.Context) {
	if err := h.notificationService.MarkAllSeen(c.Request.Context(), middleware.MustGetIdentityID(c)); err != nil {
		response.FromError(c, "failed to mark notifications seen", err)
		return
	}

	response.Success(c, http.StatusOK, "all notifications marked seen", nil)
}

// GetUnreadCount returns the caller's unseen notification count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), middleware.MustGetIdentityID(c))
	if err != nil {
		response.FromError(c, "failed to count unread notifications", err)
		return
	}

	response.Success(c, http.StatusOK, "unread count retrieved", map[string]int{"unread_count": count})
}

// ========== Admin Only Endpoints ==========

// Send creates a notification and fans it out to every user (admin only)
func (h *NotificationHandler) Send(c *gin.Context) {
	var req notification.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	sent, err := h.notificationService.Send(c.Request.Context(), middleware.MustGetIdentityID(c), &req)
	if err != nil {
		response.FromError(c, "failed to send notification", err)
		return
	}

	response.Success(c, http.StatusCreated, "notification sent", sent)
}

// ========== Operator Endpoints ==========

// Cleanup prunes expired notifications and seen recipient rows past
// their retention window. Guarded by the operator key.
func (h *NotificationHandler) Cleanup(c *gin.Context) {
	result, err := h.notificationService.CleanupExpired(c.Request.Context())
	if err != nil {
		response.FromError(c, "cleanup failed", err)
		return
	}

	response.Success(c, http.StatusOK, "cleanup complete", result)
}
