// File: internal/product/handler.go
package product

import (
	"net/http"

	"pcstore_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for product handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new product handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("ProductHandler")}
}

// RegisterRoutes sets up the routes for product operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	productGroup := router.Group("/products")
	{
		productGroup.GET("", h.listProducts)
		productGroup.GET("/category/:categoryId", h.listProductsByCategory)
		productGroup.GET("/:id", h.getProduct)

		productGroup.POST("", authMW, adminRoleMW, h.createProduct)
		productGroup.PUT("/:id", authMW, adminRoleMW, h.updateProduct)
		productGroup.DELETE("/:id", authMW, adminRoleMW, h.deleteProduct)
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	q, err := common.GetListQuery(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	result, err := h.service.ListProducts(c.Request.Context(), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, result)
}

func (h *Handler) listProductsByCategory(c *gin.Context) {
	q, err := common.GetListQuery(c)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	result, err := h.service.ListProductsByCategory(c.Request.Context(), c.Param("categoryId"), q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, result)
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, p)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create product: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	p, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, p)
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update product: Invalid request body", zap.Error(err), zap.String("productID", c.Param("id")))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	p, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	p, err := h.service.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondMessage(c, http.StatusOK, "Product deleted successfully", gin.H{"product": p})
}
