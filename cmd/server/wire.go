// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"pcstore_backend/internal/app"
	"pcstore_backend/internal/auth"
	"pcstore_backend/internal/category"
	"pcstore_backend/internal/config"
	"pcstore_backend/internal/identity"
	"pcstore_backend/internal/jobs"
	"pcstore_backend/internal/media"
	"pcstore_backend/internal/platform/cache"
	"pcstore_backend/internal/product"
	"pcstore_backend/internal/user"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	provideLogger,
	provideDatabase,
	cache.New,
)

var identitySet = wire.NewSet(
	identity.NewProvider,
	provideProvisioner,
	provideDirectory,
	provideTokenVerifier,
)

var userSet = wire.NewSet(
	user.NewMongoRepository,
	user.NewService,
	provideAccountAdopter,
	jobs.NewIdentityReconcileJob,
)

var mediaSet = wire.NewSet(
	media.NewCloudinaryBackend,
	media.NewClient,
	wire.Bind(new(media.Store), new(*media.Client)),
	wire.Bind(new(media.AssetRemover), new(*media.Client)),
	media.NewCleaner,
	wire.Bind(new(media.ImageCleaner), new(*media.Cleaner)),
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		identitySet,
		userSet,
		mediaSet,

		auth.NewHandler,
		user.NewHandler,
		category.NewMongoRepository,
		category.NewService,
		category.NewHandler,
		provideCategoryLookup,
		product.NewMongoRepository,
		product.NewService,
		product.NewHandler,
		media.NewHandler,

		app.NewServer,
	)
	return nil, nil, nil
}

// initializeCommands wires the dependencies of the maintenance subcommands.
func initializeCommands(cfg *config.Config) (*commandDeps, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		identitySet,
		userSet,
		wire.Struct(new(commandDeps), "*"),
	)
	return nil, nil, nil
}
