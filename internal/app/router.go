package app

import (
	"toolhub-service/internal/domain/catalog"
	catalogHandler "toolhub-service/internal/handlers/catalog"
	couponHandler "toolhub-service/internal/handlers/coupon"
	notifyHandler "toolhub-service/internal/handlers/notification"
	orderHandler "toolhub-service/internal/handlers/order"
	planHandler "toolhub-service/internal/handlers/plan"
	wsHandler "toolhub-service/internal/handlers/websocket"
	"toolhub-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	PlanHandler     *planHandler.PlanHandler
	CouponHandler   *couponHandler.CouponHandler
	OrderHandler    *orderHandler.OrderHandler
	NotifHandler    *notifyHandler.NotificationHandler
	CatalogHandler  *catalogHandler.CatalogHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
	OperatorKeyHash string
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Plans ====================
	plans := api.Group("/plans")
	{
		// Public endpoints - no auth required
		plans.GET("", h.PlanHandler.ListPublicPlans)
		plans.GET("/:id", h.PlanHandler.GetPlan)
	}

	// ==================== Coupons ====================
	coupons := api.Group("/coupons")
	coupons.Use(h.AuthMiddleware.Auth())
	{
		coupons.POST("/validate", h.CouponHandler.ValidateCoupon)
	}

	// ==================== Orders & Payments ====================
	orders := api.Group("/orders")
	orders.Use(h.AuthMiddleware.Auth())
	{
		orders.POST("/checkout", h.OrderHandler.Checkout)
		orders.POST("/verify-payment", h.OrderHandler.VerifyPayment)
		orders.GET("", h.OrderHandler.ListOrders)
		orders.GET("/:id", h.OrderHandler.GetOrder)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.GET("", h.NotifHandler.List)
		notifications.GET("/count/unread", h.NotifHandler.GetUnreadCount)
		notifications.PUT("/:id/seen", h.NotifHandler.MarkSeen)
		notifications.PUT("/seen-all", h.NotifHandler.MarkAllSeen)
	}

	// ==================== Directories ====================
	registerDirectory(api, h, "/tools", catalog.KindAITool)
	registerDirectory(api, h, "/websites", catalog.KindUsefulWebsite)

	// ==================== ADMIN ROUTES ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		// Plan management
		adminPlans := admin.Group("/plans")
		{
			adminPlans.GET("", h.PlanHandler.ListPlans)
			adminPlans.POST("", h.PlanHandler.CreatePlan)
			adminPlans.PUT("/:id", h.PlanHandler.UpdatePlan)
			adminPlans.PUT("/:id/activate", h.PlanHandler.ActivatePlan)
			adminPlans.PUT("/:id/deactivate", h.PlanHandler.DeactivatePlan)
			adminPlans.DELETE("/:id", h.PlanHandler.DeletePlan)
			adminPlans.GET("/stats", h.PlanHandler.GetStats)
		}

		// Coupon management
		adminCoupons := admin.Group("/coupons")
		{
			adminCoupons.GET("", h.CouponHandler.ListCoupons)
			adminCoupons.POST("", h.CouponHandler.CreateCoupon)
			adminCoupons.GET("/stats", h.CouponHandler.GetStats)
			adminCoupons.GET("/:id", h.CouponHandler.GetCoupon)
			adminCoupons.PUT("/:id", h.CouponHandler.UpdateCoupon)
			adminCoupons.PUT("/:id/activate", h.CouponHandler.ActivateCoupon)
			adminCoupons.PUT("/:id/deactivate", h.CouponHandler.DeactivateCoupon)
			adminCoupons.DELETE("/:id", h.CouponHandler.DeleteCoupon)
		}

		// Order oversight
		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("/stats", h.OrderHandler.GetStats)
			adminOrders.GET("/:id", h.OrderHandler.GetOrder)
		}

		// Notification broadcast
		admin.POST("/notifications", h.NotifHandler.Send)

		// Directory moderation
		adminTools := admin.Group("/tools")
		{
			adminTools.GET("", h.CatalogHandler.ListAll(catalog.KindAITool))
			adminTools.PUT("/:id/moderate", h.CatalogHandler.Moderate(catalog.KindAITool))
			adminTools.DELETE("/:id", h.CatalogHandler.DeleteItem(catalog.KindAITool))
		}
		adminWebsites := admin.Group("/websites")
		{
			adminWebsites.GET("", h.CatalogHandler.ListAll(catalog.KindUsefulWebsite))
			adminWebsites.PUT("/:id/moderate", h.CatalogHandler.Moderate(catalog.KindUsefulWebsite))
			adminWebsites.DELETE("/:id", h.CatalogHandler.DeleteItem(catalog.KindUsefulWebsite))
		}

		// WebSocket stats
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}

	// ==================== OPERATOR ROUTES ====================
	// Scheduled jobs call these with the shared operator key.
	operator := api.Group("/internal")
	operator.Use(middleware.OperatorKey(h.OperatorKeyHash))
	{
		operator.POST("/notifications/cleanup", h.NotifHandler.Cleanup)
	}
}

// registerDirectory wires the shared catalog handler to one directory
// (AI tools or useful websites) under the given path prefix.
func registerDirectory(api *gin.RouterGroup, h *Handlers, path string, kind catalog.ItemKind) {
	public := api.Group(path)
	{
		public.GET("", h.CatalogHandler.List(kind))
		public.GET("/:id", h.CatalogHandler.GetItem(kind))
	}

	authed := api.Group(path)
	authed.Use(h.AuthMiddleware.Auth())
	{
		authed.POST("", h.CatalogHandler.Submit(kind))
		authed.POST("/:id/like", h.CatalogHandler.Like(kind))
		authed.DELETE("/:id/like", h.CatalogHandler.Unlike(kind))
	}
}
