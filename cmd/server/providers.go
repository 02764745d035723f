// File: cmd/server/providers.go
package main

import (
	"context"
	"log"
	"time"

	"pcstore_backend/internal/category"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/identity"
	"pcstore_backend/internal/jobs"
	"pcstore_backend/internal/platform/database"
	"pcstore_backend/internal/platform/logger"
	"pcstore_backend/internal/product"
	"pcstore_backend/internal/user"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}, nil
}

// provideDatabase connects to MongoDB and makes sure every collection has its indexes.
func provideDatabase(cfg *config.Config, l *zap.Logger) (*mongo.Database, func(), error) {
	db, cleanup, err := database.NewMongo(cfg, l)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db, l, user.Indexes(), category.Indexes(), product.Indexes()); err != nil {
		cleanup()
		return nil, nil, err
	}
	return db, cleanup, nil
}

func provideProvisioner(p identity.Provider) identity.Provisioner { return p }

func provideDirectory(p identity.Provider) identity.Directory { return p }

func provideTokenVerifier(p identity.Provider) identity.TokenVerifier { return p }

func provideAccountAdopter(s user.Service) jobs.AccountAdopter { return s }

func provideCategoryLookup(repo category.Repository) product.CategoryLookup { return repo }
