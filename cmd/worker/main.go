// Package main is the brewpos maintenance worker. It runs next to the API server
// against the same PostgreSQL database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"brewpos/internal/config"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/infrastructure/storage/postgres"
	"brewpos/internal/infrastructure/storage/postgres/catalog_repo"
	"brewpos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StorageDriverPostgres {
		fmt.Println("the worker needs STORAGE_DRIVER=postgres")
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	worker := &Worker{
		log:         log.WithComponent("worker"),
		pool:        pool,
		idempotency: postgres.NewIdempotencyStore(pool, cfg.IdempotencyTTL),
		ingredients: catalog_repo.NewIngredientRepo(txm),
		txManager:   txm,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs periodic housekeeping.
type Worker struct {
	log         *logger.Logger
	pool        *postgres.Pool
	idempotency *postgres.IdempotencyStore
	ingredients catalog.IngredientRepository
	txManager   *postgres.TxManager
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	lowStockTicker := time.NewTicker(15 * time.Minute)
	defer lowStockTicker.Stop()

	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	w.reportLowStock(ctx)
	w.cleanupIdempotency(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-lowStockTicker.C:
			w.reportLowStock(ctx)
			w.pool.LogStats(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

// reportLowStock logs every ingredient at or below its minimum, cups included.
func (w *Worker) reportLowStock(ctx context.Context) {
	var low []*catalog.Ingredient
	err := w.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		low, err = w.ingredients.ListLowStock(ctx)
		return err
	})
	if err != nil {
		w.log.Errorw("low stock check failed", "error", err)
		return
	}

	for _, ing := range low {
		w.log.Warnw("ingredient low on stock",
			"ingredient_id", ing.ID,
			"ingredient", ing.Name,
			"stock", ing.Stock.String(),
			"min_stock", ing.MinStock.String(),
			"unit", ing.Unit,
		)
	}
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.idempotency.CleanupExpired(ctx)
	if err != nil {
		w.log.Errorw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
