// Package main is the entry point for the brewpos API server.
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

	"brewpos/internal/app"
	"brewpos/internal/config"
	v1 "brewpos/internal/infrastructure/http/v1"
	"brewpos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting brewpos server", "storage", cfg.StorageDriver, "env", cfg.AppEnv)

	storage, err := app.NewStorage(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer storage.Close()

	if storage.Driver == config.StorageDriverMemory {
		log.Warn("memory storage: all data is lost on restart")
	}

	services := app.NewServices(storage, cfg.Engine)
	log.Infow("consumption policy",
		"order_cancel_restock", cfg.Engine.OrderCancelRestock,
		"staff_discount_rate", cfg.Engine.StaffDiscountRate,
		"unit_tracked_categories", cfg.Engine.UnitTrackedCategories,
	)

	router, err := v1.NewRouter(v1.RouterConfig{
		Logger:             log,
		Services:           services,
		Health:             storage,
		HealthName:         storage.Driver,
		Idempotency:        storage.Idempotency,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Release:            cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalw("failed to build router", "error", err)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	_ = log.Sync()
	log.Info("server stopped")
}
