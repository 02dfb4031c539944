package catalog

import (
	"net/http"
	"strconv"

	"toolhub-service/internal/domain/catalog"
	"toolhub-service/internal/middleware"
	"toolhub-service/internal/pkg/response"
	service "toolhub-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves both directories. Each route group binds the
// handler to one item kind, so the same code backs /tools and /websites.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// ========== Public Endpoints ==========

// List retrieves approved entries for public browsing
func (h *CatalogHandler) List(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters catalog.ItemListFilters
		if err := c.ShouldBindQuery(&filters); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
			return
		}

		result, err := h.catalogService.ListApproved(c.Request.Context(), kind, &filters)
		if err != nil {
			response.FromError(c, "failed to list items", err)
			return
		}

		response.Success(c, http.StatusOK, "items retrieved", result)
	}
}

// GetItem retrieves a single entry
func (h *CatalogHandler) GetItem(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := parseID(c)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid item ID", err)
			return
		}

		item, err := h.catalogService.GetItem(c.Request.Context(), kind, itemID)
		if err != nil {
			response.FromError(c, "item not found", err)
			return
		}

		response.Success(c, http.StatusOK, "item retrieved", item)
	}
}

// ========== User Endpoints ==========

// Submit files a new entry for moderation
func (h *CatalogHandler) Submit(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.SubmitItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid request", err)
			return
		}

		item, err := h.catalogService.Submit(c.Request.Context(), kind, middleware.MustGetIdentityID(c), &req)
		if err != nil {
			response.FromError(c, "failed to submit item", err)
			return
		}

		response.Success(c, http.StatusCreated, "item submitted for review", item)
	}
}

// Like records the caller's like on an entry
func (h *CatalogHandler) Like(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := parseID(c)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid item ID", err)
			return
		}

		err = h.catalogService.Like(
			c.Request.Context(), kind, itemID,
			middleware.MustGetIdentityID(c), middleware.MustGetEmail(c),
		)
		if err != nil {
			response.FromError(c, "failed to like item", err)
			return
		}

		response.Success(c, http.StatusOK, "item liked", nil)
	}
}

// Unlike withdraws the caller's like
func (h *CatalogHandler) Unlike(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := parseID(c)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid item ID", err)
			return
		}

		err = h.catalogService.Unlike(c.Request.Context(), kind, itemID, middleware.MustGetIdentityID(c))
		if err != nil {
			response.FromError(c, "failed to unlike item", err)
			return
		}

		response.Success(c, http.StatusOK, "item unliked", nil)
	}
}

// ========== Admin Only Endpoints ==========

// ListAll retrieves entries in any status for moderation (admin only)
func (h *CatalogHandler) ListAll(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filters catalog.ItemListFilters
		if err := c.ShouldBindQuery(&filters); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid query parameters", err)
			return
		}

		result, err := h.catalogService.ListAll(c.Request.Context(), kind, &filters)
		if err != nil {
			response.FromError(c, "failed to list items", err)
			return
		}

		response.Success(c, http.StatusOK, "items retrieved", result)
	}
}

// Moderate approves or rejects a submission (admin only)
func (h *CatalogHandler) Moderate(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := parseID(c)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid item ID", err)
			return
		}

		var req catalog.ModerateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid request", err)
			return
		}

		item, err := h.catalogService.Moderate(c.Request.Context(), kind, itemID, req.Status)
		if err != nil {
			response.FromError(c, "failed to moderate item", err)
			return
		}

		response.Success(c, http.StatusOK, "item moderated", item)
	}
}

// DeleteItem removes an entry (admin only)
func (h *CatalogHandler) DeleteItem(kind catalog.ItemKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, err := parseID(c)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid item ID", err)
			return
		}

		if err := h.catalogService.DeleteItem(c.Request.Context(), kind, itemID); err != nil {
			response.FromError(c, "failed to delete item", err)
			return
		}

		response.Success(c, http.StatusOK, "item deleted", nil)
	}
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
