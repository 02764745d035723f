// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pcstore_backend/internal/auth"
	"pcstore_backend/internal/category"
	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/identity"
	"pcstore_backend/internal/jobs"
	"pcstore_backend/internal/media"
	"pcstore_backend/internal/middleware"
	"pcstore_backend/internal/product"
	"pcstore_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	reconcileJob *jobs.IdentityReconcileJob
}

// NewServer creates the HTTP server and registers every route.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	verifier identity.TokenVerifier,
	userService user.Service,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	categoryHandler *category.Handler,
	productHandler *product.Handler,
	mediaHandler *media.Handler,
	reconcileJob *jobs.IdentityReconcileJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	authMW := middleware.AuthMiddleware(cfg, verifier, userService, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(cfg, common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	authHandler.RegisterRoutes(router, authMW)

	api := router.Group("/api")
	userHandler.RegisterRoutes(api, authMW)
	categoryHandler.RegisterRoutes(api, authMW, adminRoleMW)
	productHandler.RegisterRoutes(api, authMW, adminRoleMW)
	mediaHandler.RegisterRoutes(api, authMW, adminRoleMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:   httpServer,
		router:       router,
		cfg:          cfg,
		logger:       logger,
		reconcileJob: reconcileJob,
	}, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	if len(cfg.CORSAllowOrigins) == 0 || (len(cfg.CORSAllowOrigins) == 1 && cfg.CORSAllowOrigins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.CORSAllowOrigins
		c.AllowCredentials = true
	}
	c.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	c.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	return c
}

// Router exposes the configured engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.reconcileJob != nil {
		if err := s.reconcileJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start identity reconcile job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.reconcileJob != nil {
		s.reconcileJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
