// File: internal/platform/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pcstore_backend/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Namespaces of the catalog list pages.
const (
	NamespaceCategories = "categories"
	NamespaceProducts   = "products"
)

// ListCache stores rendered list pages per namespace. Invalidate drops every entry of a
// namespace at once by bumping its version. Implementations never fail the caller.
type ListCache interface {
	Get(ctx context.Context, namespace, key string, dest interface{}) bool
	Set(ctx context.Context, namespace, key string, value interface{})
	Invalidate(ctx context.Context, namespace string)
}

// New returns a Redis-backed cache, or a no-op cache when REDIS_ADDR is empty.
func New(cfg *config.Config, logger *zap.Logger) (ListCache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, catalog list cache disabled")
		return Noop{}, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))

	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	return NewRedis(client, cfg.CatalogCacheTTL, logger), cleanup, nil
}

// Redis is a ListCache on top of go-redis.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Redis{client: client, ttl: ttl, logger: logger.Named("ListCache")}
}

func versionKey(namespace string) string {
	return "cache:" + namespace + ":version"
}

func entryKey(namespace string, version int64, key string) string {
	return fmt.Sprintf("cache:%s:v%d:%s", namespace, version, key)
}

func (r *Redis) version(ctx context.Context, namespace string) (int64, error) {
	v, err := r.client.Get(ctx, versionKey(namespace)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *Redis) Get(ctx context.Context, namespace, key string, dest interface{}) bool {
	version, err := r.version(ctx, namespace)
	if err != nil {
		r.logger.Warn("Failed to read cache version", zap.String("namespace", namespace), zap.Error(err))
		return false
	}
	raw, err := r.client.Get(ctx, entryKey(namespace, version, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("Failed to read cache entry", zap.String("namespace", namespace), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("Failed to decode cache entry", zap.String("namespace", namespace), zap.Error(err))
		return false
	}
	return true
}

func (r *Redis) Set(ctx context.Context, namespace, key string, value interface{}) {
	version, err := r.version(ctx, namespace)
	if err != nil {
		r.logger.Warn("Failed to read cache version", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Failed to encode cache entry", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	if err := r.client.Set(ctx, entryKey(namespace, version, key), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("Failed to write cache entry", zap.String("namespace", namespace), zap.Error(err))
	}
}

func (r *Redis) Invalidate(ctx context.Context, namespace string) {
	v, err := r.client.Incr(ctx, versionKey(namespace)).Result()
	if err != nil {
		r.logger.Error("Failed to invalidate cache", zap.String("namespace", namespace), zap.Error(err))
		return
	}
	r.logger.Debug("Cache invalidated", zap.String("namespace", namespace), zap.Int64("version", v))
}

// Noop is used when no cache is configured.
type Noop struct{}

func (Noop) Get(context.Context, string, string, interface{}) bool { return false }
func (Noop) Set(context.Context, string, string, interface{})      {}
func (Noop) Invalidate(context.Context, string)                    {}
