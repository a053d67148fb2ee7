// Package main is the entry point for the club ledger background worker.
// It checks ledger balances against their movements, writes monthly
// snapshots and purges expired idempotency keys and reset codes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	_ "time/tzdata"

	"clubledger/internal/app"
	"clubledger/internal/config"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithLogger(ctx, log)

	log.Info("starting clubledger worker")

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	worker := NewWorker(WorkerConfig{
		DriftInterval:    cfg.Worker.DriftInterval,
		SnapshotInterval: cfg.Worker.SnapshotInterval,
		CleanupInterval:  cfg.Worker.CleanupInterval,
		RepairDrift:      cfg.Worker.RepairDrift,
	}, a.Clubs, a.Inventory, a.Periods, log)
	worker.AddCleanup("idempotency_keys", a.Idempotency.CleanupExpired)
	worker.AddCleanup("reset_codes", a.Auth.CleanupResetCodes)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}
