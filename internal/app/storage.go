// Package app assembles repositories and services for a storage backend.
package app

import (
	"context"
	"fmt"
	"time"

	"brewpos/internal/config"
	"brewpos/internal/core/idempotency"
	"brewpos/internal/core/numerator"
	"brewpos/internal/core/tx"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/orders"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/domain/waste"
	numeratorpg "brewpos/internal/infrastructure/numerator"
	"brewpos/internal/infrastructure/storage/memory"
	"brewpos/internal/infrastructure/storage/postgres"
	"brewpos/internal/infrastructure/storage/postgres/catalog_repo"
	"brewpos/internal/infrastructure/storage/postgres/document_repo"
	"brewpos/internal/infrastructure/storage/postgres/register_repo"
	"brewpos/pkg/logger"
)

// Storage is one backend's set of repositories.
type Storage struct {
	Driver    string
	TxManager tx.Manager

	Ingredients       catalog.IngredientRepository
	Products          catalog.ProductRepository
	Recipes           recipe.Repository
	Movements         stock.Repository
	Orders            orders.Repository
	StaffConsumptions staffmeal.Repository
	Waste             waste.Repository

	Numerator   numerator.Generator
	AuditSink   audit.Sink
	Idempotency idempotency.Store

	// Pool is set for the postgres backend only.
	Pool *postgres.Pool
}

// Ping reports whether the backend can serve requests.
func (s *Storage) Ping(ctx context.Context) error {
	if s.Pool == nil {
		return nil
	}
	return s.Pool.Ping(ctx)
}

// Close releases backend resources.
func (s *Storage) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// NewMemoryStorage builds the in-process backend. Audit entries go to the log.
func NewMemoryStorage(log *logger.Logger, idempotencyTTL time.Duration) *Storage {
	store := memory.New()
	return &Storage{
		Driver:            config.StorageDriverMemory,
		TxManager:         store,
		Ingredients:       memory.NewIngredientRepo(store),
		Products:          memory.NewProductRepo(store),
		Recipes:           memory.NewRecipeRepo(store),
		Movements:         memory.NewMovementRepo(store),
		Orders:            memory.NewOrderRepo(store),
		StaffConsumptions: memory.NewStaffConsumptionRepo(store),
		Waste:             memory.NewWasteRepo(store),
		Numerator:         memory.NewNumerator(store),
		AuditSink:         audit.NewLogSink(log),
		Idempotency:       memory.NewIdempotencyStore(idempotencyTTL),
	}
}

// NewPostgresStorage connects to cfg.DatabaseURL and builds the postgres backend.
func NewPostgresStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	if cfg.DBMaxConns > 0 {
		poolCfg.MaxConns = cfg.DBMaxConns
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if cfg.DBApplySchema {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info(ctx, "database schema applied")
	}

	txm := postgres.NewTxManager(pool)
	auditStore, err := postgres.NewAuditStore(txm)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create audit store: %w", err)
	}

	return &Storage{
		Driver:            config.StorageDriverPostgres,
		TxManager:         txm,
		Ingredients:       catalog_repo.NewIngredientRepo(txm),
		Products:          catalog_repo.NewProductRepo(txm),
		Recipes:           catalog_repo.NewRecipeRepo(txm),
		Movements:         register_repo.NewStockRepo(txm),
		Orders:            document_repo.NewOrderRepo(txm),
		StaffConsumptions: document_repo.NewStaffConsumptionRepo(txm),
		Waste:             document_repo.NewWasteRepo(txm),
		Numerator:         numeratorpg.New(pool),
		AuditSink:         auditStore,
		Idempotency:       postgres.NewIdempotencyStore(pool, cfg.IdempotencyTTL),
		Pool:              pool,
	}, nil
}

// NewStorage selects the backend named by cfg.StorageDriver.
func NewStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		return NewMemoryStorage(log, cfg.IdempotencyTTL), nil
	case config.StorageDriverPostgres:
		return NewPostgresStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
