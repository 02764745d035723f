// File: internal/media/handler.go
package media

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"pcstore_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Store is what the HTTP handler needs from the image client.
type Store interface {
	DeleteAsset(ctx context.Context, assetID string) error
	UploadAsset(ctx context.Context, open FileOpener, folder, presetName string) (*UploadedAsset, error)
}

// Handler handles image upload and deletion requests.
type Handler struct {
	store  Store
	logger *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger.Named("MediaHandler")}
}

// RegisterRoutes sets up the routes for image management. Both routes require an admin.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	cld := group.Group("/cloudinary", authMW, adminMW)
	{
		cld.POST("/delete", h.deleteAsset)
		cld.POST("/upload", h.uploadAsset)
	}
}

type deleteAssetRequest struct {
	PublicID string `json:"publicId" binding:"required"`
}

func (h *Handler) deleteAsset(c *gin.Context) {
	var req deleteAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("publicId is required."))
		return
	}
	publicID := strings.TrimSpace(req.PublicID)
	if publicID == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("publicId is required."))
		return
	}

	if err := h.store.DeleteAsset(c.Request.Context(), publicID); err != nil {
		h.logger.Error("Failed to delete image", zap.String("publicId", publicID), zap.Error(err))
		common.RespondWithError(c, err)
		return
	}
	common.RespondMessage(c, http.StatusOK, "Image deleted successfully", gin.H{
		"result": gin.H{"publicId": publicID, "deleted": true},
	})
}

func (h *Handler) uploadAsset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondWithError(c, common.NewValidationAPIError(map[string]string{"image": "An image file is required."}))
		return
	}
	if err := checkImageFile(fileHeader); err != nil {
		common.RespondWithError(c, err)
		return
	}

	open := func() (io.ReadCloser, error) { return fileHeader.Open() }
	asset, err := h.store.UploadAsset(c.Request.Context(), open, c.PostForm("folder"), c.PostForm("preset"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.logger.Info("Image uploaded", zap.String("publicId", asset.PublicID))
	common.RespondCreated(c, asset)
}

// checkImageFile accepts known image extensions, inferring one from the content type when missing.
func checkImageFile(fileHeader *multipart.FileHeader) error {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		contentType := fileHeader.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(contentType, "image/jpeg"):
			ext = ".jpg"
		case strings.HasPrefix(contentType, "image/png"):
			ext = ".png"
		case strings.HasPrefix(contentType, "image/gif"):
			ext = ".gif"
		case strings.HasPrefix(contentType, "image/webp"):
			ext = ".webp"
		}
	}
	if !allowedExtensions[ext] {
		return common.NewValidationAPIError(map[string]string{"image": "Unsupported file type."})
	}
	if fileHeader.Size > maxUploadBytes {
		return common.NewValidationAPIError(map[string]string{"image": "File is too large."})
	}
	return nil
}
