// File: internal/user/handler.go
package user

import (
	"pcstore_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves user profile lookups.
type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("UserHandler")}
}

// RegisterRoutes sets up the routes for user operations. All of them require authentication.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/users", authMW)
	{
		userGroup.GET("/me", h.getMe)
		userGroup.GET("/:id", h.getUserByID)
	}
}

func (h *Handler) getMe(c *gin.Context) {
	identityID := common.GetIdentityIDFromContext(c)
	if identityID == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No authenticated user."))
		return
	}
	usr, err := h.service.GetByIdentityID(c.Request.Context(), identityID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"user": ToUserResponse(usr)})
}

func (h *Handler) getUserByID(c *gin.Context) {
	id, err := common.ParseObjectID(c.Param("id"), "user")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if common.GetUserRoleFromContext(c) != common.RoleAdmin && c.GetString(common.UserIDKey) != id.Hex() {
		h.logger.Warn("User attempting to fetch another user's profile without admin rights",
			zap.String("requestingUserID", c.GetString(common.UserIDKey)),
			zap.String("targetUserID", id.Hex()))
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You are not authorized to view this profile."))
		return
	}
	usr, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, gin.H{"user": ToUserResponse(usr)})
}
