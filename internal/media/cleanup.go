// File: internal/media/cleanup.go
package media

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDeletes = 4

// ImageCleaner removes images whose records changed. A failed removal never fails the caller.
type ImageCleaner interface {
	Remove(ctx context.Context, reason string, urls ...string) int
}

// Cleaner is the best-effort ImageCleaner. Each URL is attempted independently.
type Cleaner struct {
	remover AssetRemover
	logger  *zap.Logger
}

func NewCleaner(remover AssetRemover, logger *zap.Logger) *Cleaner {
	return &Cleaner{remover: remover, logger: logger.Named("ImageCleaner")}
}

// Remove deletes urls concurrently and returns how many attempts failed.
func (c *Cleaner) Remove(ctx context.Context, reason string, urls ...string) int {
	var failed int32
	var g errgroup.Group
	g.SetLimit(maxConcurrentDeletes)

	for _, u := range urls {
		if u == "" {
			continue
		}
		u := u
		g.Go(func() error {
			if err := c.remover.DeleteAssetByURL(ctx, u); err != nil {
				atomic.AddInt32(&failed, 1)
				c.logger.Warn("Image cleanup failed",
					zap.String("reason", reason),
					zap.String("url", u),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(failed)
}
