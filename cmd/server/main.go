// Package main is the entry point for the club ledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"clubledger/internal/app"
	"clubledger/internal/config"
	v1 "clubledger/internal/infrastructure/http/v1"
	"clubledger/internal/infrastructure/http/v1/handlers"
	"clubledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	log.Infow("starting clubledger server", "env", cfg.App.Env, "version", cfg.App.Version)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(a.Pool.Ready),
	}
	if a.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		})
	}

	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		JWTValidator:       a.JWT,
		Scopes:             a.Scopes,
		Auth:               a.Auth,
		Clubs:              a.Clubs,
		Products:           a.Products,
		Inventory:          a.Inventory,
		Sales:              a.Sales,
		Expenses:           a.Expenses,
		Reports:            a.Reports,
		Dashboard:          a.Dashboard,
		Idempotency:        a.Idempotency,
		CORSAllowedOrigins: cfg.HTTP.CORSAllowedOrigins,
		Development:        cfg.App.IsDevelopment(),
		Version:            cfg.App.Version,
		HealthChecks:       checks,
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	a.Pool.LogStats(logger.WithLogger(context.Background(), log))
	log.Info("server stopped")
}
