// File: internal/media/client.go
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"
	"time"

	"pcstore_backend/internal/common"
	"pcstore_backend/internal/config"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// Backend is the part of the Cloudinary upload API the client relies on.
// *uploader.API satisfies it.
type Backend interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// AssetRemover deletes a remote image given its delivery URL.
type AssetRemover interface {
	DeleteAssetByURL(ctx context.Context, assetURL string) error
}

// FileOpener returns a fresh reader over the file to upload. It may be called more than once.
type FileOpener func() (io.ReadCloser, error)

// UploadedAsset describes a stored image.
type UploadedAsset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
}

// NewCloudinaryBackend builds the Cloudinary SDK from the configured credentials.
func NewCloudinaryBackend(cfg *config.Config) (Backend, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary client: %w", err)
	}
	return &cld.Upload, nil
}

// Client is the remote image store client.
type Client struct {
	backend        Backend
	timeout        time.Duration
	unsignedPreset string
	defaultPreset  string
	defaultFolder  string
	logger         *zap.Logger
}

func NewClient(backend Backend, cfg *config.Config, logger *zap.Logger) *Client {
	timeout := cfg.ExternalCallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		backend:        backend,
		timeout:        timeout,
		unsignedPreset: cfg.CloudinaryUnsignedPreset,
		defaultPreset:  cfg.CloudinaryUploadPreset,
		defaultFolder:  cfg.CloudinaryFolder,
		logger:         logger.Named("MediaClient"),
	}
}

var versionSegment = regexp.MustCompile(`^v\d+/`)

// ExtractAssetID returns the asset id embedded in a delivery URL: the path after the
// "upload" segment without the optional version segment and without the file extension.
// For https://res.cloudinary.com/demo/image/upload/v1700000000/folder/pic.jpg it is "folder/pic".
func ExtractAssetID(assetURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(assetURL))
	if err != nil {
		return "", false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, segment := range segments {
		if segment != "upload" {
			continue
		}
		rest := versionSegment.ReplaceAllString(strings.Join(segments[i+1:], "/"), "")
		if dot := strings.LastIndex(rest, "."); dot > strings.LastIndex(rest, "/") {
			rest = rest[:dot]
		}
		if rest == "" {
			return "", false
		}
		return rest, true
	}
	return "", false
}

// DeleteAsset destroys an asset. "not found" counts as success.
func (c *Client) DeleteAsset(ctx context.Context, assetID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.backend.Destroy(ctx, uploader.DestroyParams{PublicID: assetID})
	if err != nil {
		return fmt.Errorf("%w: destroy %s: %v", common.ErrAssetCleanupFailed, assetID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("%w: destroy %s: %s", common.ErrAssetCleanupFailed, assetID, res.Error.Message)
	}
	switch res.Result {
	case "ok", "not found":
		c.logger.Debug("Asset deleted", zap.String("publicId", assetID), zap.String("result", res.Result))
		return nil
	default:
		return fmt.Errorf("%w: destroy %s: unexpected result %q", common.ErrAssetCleanupFailed, assetID, res.Result)
	}
}

// DeleteAssetByURL deletes the asset behind a delivery URL. URLs without an asset id are skipped.
func (c *Client) DeleteAssetByURL(ctx context.Context, assetURL string) error {
	assetID, ok := ExtractAssetID(assetURL)
	if !ok {
		c.logger.Warn("Skipping deletion of malformed image URL", zap.String("url", assetURL))
		return nil
	}
	return c.DeleteAsset(ctx, assetID)
}

// UploadAsset tries an unsigned upload first and falls back to presetName (or the configured
// upload preset). When both attempts fail the error carries both diagnostics.
func (c *Client) UploadAsset(ctx context.Context, open FileOpener, folder, presetName string) (*UploadedAsset, error) {
	if folder == "" {
		folder = c.defaultFolder
	}
	if presetName == "" {
		presetName = c.defaultPreset
	}

	unsigned := uploader.UploadParams{Folder: folder, UploadPreset: c.unsignedPreset, Unsigned: api.Bool(true)}
	asset, firstErr := c.upload(ctx, open, unsigned)
	if firstErr == nil {
		return asset, nil
	}
	c.logger.Warn("Unsigned upload failed, retrying with preset", zap.String("preset", presetName), zap.Error(firstErr))

	signed := uploader.UploadParams{Folder: folder, UploadPreset: presetName}
	asset, secondErr := c.upload(ctx, open, signed)
	if secondErr == nil {
		return asset, nil
	}

	combined := fmt.Sprintf("unsigned upload: %v; preset upload: %v", firstErr, secondErr)
	c.logger.Error("Image upload failed", zap.String("diagnostics", combined))
	return nil, common.ErrUploadFailed.WithDetails(combined)
}

func (c *Client) upload(ctx context.Context, open FileOpener, params uploader.UploadParams) (*UploadedAsset, error) {
	file, err := open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.backend.Upload(ctx, file, params)
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, errors.New(res.Error.Message)
	}
	if res.SecureURL == "" {
		return nil, errors.New("empty secure url in upload response")
	}
	return &UploadedAsset{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
	}, nil
}
