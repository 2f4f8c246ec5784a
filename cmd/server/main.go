package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewdeck/crewdeck/internal/server/changes"
	"github.com/crewdeck/crewdeck/internal/server/handlers"
	"github.com/crewdeck/crewdeck/internal/server/middleware"
	"github.com/crewdeck/crewdeck/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", ":8080", "Address to listen on")
	dbPath := flag.String("db", "crewdeck.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", "", "Secret for signing access tokens (required)")
	tokenTTL := flag.Duration("token-ttl", 15*time.Minute, "Access token lifetime")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *jwtSecret == "" {
		logger.Error("missing required flag --jwt-secret")
		os.Exit(1)
	}

	if err := run(logger, *addr, *dbPath, *jwtSecret, *tokenTTL); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath, jwtSecret string, tokenTTL time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	jwtConfig := handlers.JWTConfig{
		Secret:         []byte(jwtSecret),
		AccessTokenTTL: tokenTTL,
	}

	hub := changes.NewHub(logger)

	authHandler := handlers.NewAuthHandler(logger, store, jwtConfig)
	readinessHandler := handlers.NewReadinessHandler(logger, store, store, hub)
	healthHandler := handlers.NewHealthHandler(logger, Version, store.DB())

	authRequired := middleware.AuthMiddleware(logger, jwtConfig)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	mux.Handle("POST /api/v1/projects", authRequired(http.HandlerFunc(readinessHandler.CreateProject)))
	mux.Handle("PATCH /api/v1/projects/{id}/setup", authRequired(http.HandlerFunc(readinessHandler.UpdateSetup)))
	mux.Handle("GET /api/v1/projects/{id}/readiness", authRequired(http.HandlerFunc(readinessHandler.GetRecord)))
	mux.Handle("POST /api/v1/projects/{id}/readiness/invalidate", authRequired(http.HandlerFunc(readinessHandler.Invalidate)))
	mux.Handle("PATCH /api/v1/projects/{id}/features", authRequired(http.HandlerFunc(readinessHandler.UpdateFeatures)))
	mux.Handle("GET /api/v1/projects/{id}/changes", authRequired(hub))

	handler := middleware.RecoveryMiddleware(logger)(
		middleware.LoggingWithSkip(logger, []string{"/api/v1/health"})(
			middleware.RateLimitMiddleware(100, time.Minute, logger)(mux),
		),
	)

	// No WriteTimeout: the change stream holds connections open indefinitely
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", addr,
			"version", Version,
			"db", dbPath)
		errC <- server.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("CrewDeck Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
