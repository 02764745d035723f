// File: internal/platform/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"pcstore_backend/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IndexSet lists the indexes one collection needs.
type IndexSet struct {
	Collection string
	Models     []mongo.IndexModel
}

// NewMongo connects to MongoDB, pings it and returns the configured database together
// with a cleanup function that disconnects the client.
func NewMongo(cfg *config.Config, logger *zap.Logger) (*mongo.Database, func(), error) {
	timeout := cfg.MongoConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
			return
		}
		logger.Info("Disconnected from MongoDB")
	}
	return client.Database(cfg.MongoDatabase), cleanup, nil
}

// EnsureIndexes creates every index in sets. Existing identical indexes are left alone by the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger, sets ...IndexSet) error {
	for _, set := range sets {
		if len(set.Models) == 0 {
			continue
		}
		names, err := db.Collection(set.Collection).Indexes().CreateMany(ctx, set.Models)
		if err != nil {
			return fmt.Errorf("creating indexes on %s: %w", set.Collection, err)
		}
		logger.Debug("Indexes ensured", zap.String("collection", set.Collection), zap.Strings("indexes", names))
	}
	return nil
}
