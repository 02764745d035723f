// File: internal/auth/handler.go
package auth

import (
	"net/http"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves account registration. Login happens at the identity provider.
type Handler struct {
	userService user.Service
	logger      *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(userService user.Service, logger *zap.Logger) *Handler {
	return &Handler{userService: userService, logger: logger.Named("AuthHandler")}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router gin.IRouter, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.GET("/me", authMW, h.me)
	}
}

func (h *Handler) register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Register: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	usr, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondMessage(c, http.StatusCreated, "User registered successfully", gin.H{
		"user": user.ToUserResponse(usr),
	})
}

func (h *Handler) me(c *gin.Context) {
	usr, err := h.userService.GetByIdentityID(c.Request.Context(), common.GetIdentityIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"user": user.ToUserResponse(usr)})
}
