// File: internal/category/handler.go
package category

import (
	"net/http"

	"pcstore_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for category handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new category handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("CategoryHandler")}
}

// RegisterRoutes sets up the routes for category operations. Reads are public,
// mutations go through authMW and adminRoleMW.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	categoryGroup := router.Group("/categories")
	{
		categoryGroup.GET("", h.listCategories)
		categoryGroup.GET("/:id", h.getCategory)

		categoryGroup.POST("", authMW, adminRoleMW, h.createCategory)
		categoryGroup.PUT("/:id", authMW, adminRoleMW, h.updateCategory)
		categoryGroup.DELETE("/:id", authMW, adminRoleMW, h.deleteCategory)
	}
}

func (h *Handler) listCategories(c *gin.Context) {
	q, err := common.GetListQuery(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	result, err := h.service.ListCategories(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, result)
}

func (h *Handler) getCategory(c *gin.Context) {
	cat, err := h.service.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, cat)
}

func (h *Handler) createCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create category: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	cat, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, cat)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update category: Invalid request body", zap.Error(err), zap.String("categoryID", c.Param("id")))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	cat, err := h.service.UpdateCategory(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	cat, err := h.service.DeleteCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondMessage(c, http.StatusOK, "Category deleted successfully", gin.H{"category": cat})
}
