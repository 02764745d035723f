// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Standard log for messages before zap is active
	"os"
	"os/signal"
	"syscall"
	"time"

	"pcstore_backend/internal/config"
	"pcstore_backend/internal/jobs"
	"pcstore_backend/internal/user"

	"go.uber.org/zap"
)

// commandDeps is what the maintenance subcommands run against.
type commandDeps struct {
	Logger       *zap.Logger
	Users        user.Service
	ReconcileJob *jobs.IdentityReconcileJob
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "promote-admin":
			os.Exit(runPromoteAdmin(cfg, os.Args[2:]))
		case "reconcile-identities":
			os.Exit(runReconcile(cfg))
		}
	}

	startServer(cfg)
}

func startServer(cfg *config.Config) {
	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}

// runPromoteAdmin grants the admin role to an existing local user.
func runPromoteAdmin(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("promote-admin", flag.ExitOnError)
	username := fs.String("username", "", "Username of the account to promote")
	_ = fs.Parse(args)
	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: server promote-admin -username <name>")
		return 2
	}

	deps, cleanup, err := initializeCommands(cfg)
	if err != nil {
		log.Printf("ERROR: Failed to initialize: %v", err)
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	u, err := deps.Users.PromoteToAdmin(ctx, *username)
	if err != nil {
		deps.Logger.Error("Failed to promote user", zap.String("username", *username), zap.Error(err))
		return 1
	}
	deps.Logger.Info("User promoted to admin", zap.String("username", u.Username), zap.String("id", u.ID.Hex()))
	return 0
}

// runReconcile performs a single identity reconcile pass and exits.
func runReconcile(cfg *config.Config) int {
	deps, cleanup, err := initializeCommands(cfg)
	if err != nil {
		log.Printf("ERROR: Failed to initialize: %v", err)
		return 1
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	adopted, err := deps.ReconcileJob.RunOnce(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		deps.Logger.Error("Identity reconcile failed", zap.Error(err))
		return 1
	}
	deps.Logger.Info("Identity reconcile finished", zap.Int("adopted", adopted))
	return 0
}
