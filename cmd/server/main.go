// Command server runs the trip card API as a standalone HTTP server with
// JWT authentication and a Prometheus /metrics endpoint. In development the
// CONFIG_FILE overlay is watched and the log level and rate limit follow it.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triptailor-backend/internal/config"
	"triptailor-backend/internal/di"
	"triptailor-backend/internal/handlers"

	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Server.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required for the standalone server")
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize container: %v", err)
	}
	defer cleanup()
	logger := container.Logger

	watcher, err := config.NewWatcher(cfg, logger)
	if err != nil {
		logger.Warn("configuration hot reload unavailable", zap.Error(err))
	} else {
		watcher.OnChange(container.Reload)
		defer watcher.Close()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", container.Metrics.Handler())
	mux.Handle("/", container.Router(handlers.JWTAuthenticator([]byte(cfg.Server.JWTSecret))))

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
