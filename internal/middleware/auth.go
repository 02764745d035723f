// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/identity"
	"pcstore_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLookup resolves the local user behind a verified identity. user.Service satisfies it.
type UserLookup interface {
	GetByIdentityID(ctx context.Context, identityID string) (*user.User, error)
}

func passThrough(c *gin.Context) { c.Next() }

// AuthMiddleware verifies the bearer token with the identity provider and loads the local
// user. With AUTH_REQUIRED=false it lets every request through unauthenticated.
func AuthMiddleware(cfg *config.Config, verifier identity.TokenVerifier, users UserLookup, logger *zap.Logger) gin.HandlerFunc {
	if !cfg.AuthRequired {
		logger.Warn("Authentication is disabled; admin routes are open")
		return passThrough
	}
	return func(c *gin.Context) {
		token := common.GetTokenFromContext(c)
		if token == "" {
			logger.Debug("Bearer token missing or malformed", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		principal, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrServiceUnavailable) {
				common.RespondWithError(c, err)
				return
			}
			logger.Warn("Token validation failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("The access token is invalid or expired."))
			return
		}

		usr, err := users.GetByIdentityID(c.Request.Context(), principal.Subject)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				logger.Warn("Verified identity has no local account", zap.String("identityID", principal.Subject))
				common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No account is registered for this identity."))
				return
			}
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.UserIDKey, usr.ID.Hex())
		c.Set(common.IdentityIDKey, principal.Subject)
		c.Set(common.UserEmailKey, usr.Email)
		c.Set(common.UserRoleKey, usr.Role)

		logger.Debug("User authenticated successfully",
			zap.String("userID", usr.ID.Hex()),
			zap.String("role", usr.Role),
		)
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user has one of the required roles.
func RoleAuthMiddleware(cfg *config.Config, allowedRoles ...string) gin.HandlerFunc {
	if !cfg.AuthRequired {
		return passThrough
	}
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
