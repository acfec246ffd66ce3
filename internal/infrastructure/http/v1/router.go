// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/app"
	"brewpos/internal/core/idempotency"
	"brewpos/internal/infrastructure/http/v1/handlers"
	"brewpos/internal/infrastructure/http/v1/middleware"
	"brewpos/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Logger   *logger.Logger
	Services *app.Services

	// Health reports storage readiness; HealthName labels it in /health/ready.
	Health     handlers.Pinger
	HealthName string

	// Idempotency enables X-Idempotency-Key replay on stock-consuming POSTs when set.
	Idempotency idempotency.Store

	CORSAllowedOrigins []string
	Release            bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()

	// order matters: Recovery must see panics from everything below it
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.Use(middleware.ErrorHandler())

	health := handlers.NewHealthHandler(cfg.Health, cfg.HealthName)
	healthGroup := router.Group("/health")
	{
		healthGroup.GET("/live", health.Live)
		healthGroup.GET("/ready", health.Ready)
	}

	v1 := router.Group("/api/v1")
	base := handlers.NewBaseHandler()

	registerCatalogRoutes(v1, base, cfg)
	registerRecipeRoutes(v1, base, cfg)
	registerSaleRoutes(v1, base, cfg)
	registerStockRoutes(v1, base, cfg)

	return router, nil
}

// consuming returns the middleware for endpoints that draw down stock.
func consuming(cfg RouterConfig) []gin.HandlerFunc {
	if cfg.Idempotency == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.Idempotency(cfg.Idempotency)}
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.Services.Catalog, cfg.Services.Engine)

	ingredients := rg.Group("/ingredients")
	{
		ingredients.POST("", h.CreateIngredient)
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/low-stock", h.ListLowStock)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.PUT("/:id", h.UpdateIngredient)
		ingredients.POST("/:id/restock", append(consuming(cfg), h.RestockIngredient)...)
	}

	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.POST("/:id/restock", append(consuming(cfg), h.RestockProduct)...)
	}
}

func registerRecipeRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewRecipeHandler(base, cfg.Services.Recipes)

	products := rg.Group("/products/:id")
	{
		products.GET("/recipe", h.Resolve)
		products.GET("/recipes", h.List)
		products.PUT("/recipes", h.Upsert)
		products.DELETE("/recipes", h.Delete)
	}
}

func registerSaleRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	orderHandler := handlers.NewOrderHandler(base, cfg.Services.Orders)
	ordersGroup := rg.Group("/orders")
	{
		ordersGroup.POST("", append(consuming(cfg), orderHandler.Place)...)
		ordersGroup.GET("", orderHandler.List)
		ordersGroup.GET("/:id", orderHandler.Get)
		ordersGroup.POST("/:id/status", orderHandler.AdvanceStatus)
		ordersGroup.POST("/:id/cancel", append(consuming(cfg), orderHandler.Cancel)...)
		ordersGroup.GET("/:id/cost", orderHandler.Cost)
	}

	staffHandler := handlers.NewStaffConsumptionHandler(base, cfg.Services.StaffMeals)
	staff := rg.Group("/staff-consumptions")
	{
		staff.POST("", append(consuming(cfg), staffHandler.Record)...)
		staff.GET("", staffHandler.List)
		staff.GET("/:id", staffHandler.Get)
		staff.GET("/:id/cost", staffHandler.Cost)
	}

	wasteHandler := handlers.NewWasteHandler(base, cfg.Services.Waste)
	wasteGroup := rg.Group("/waste")
	{
		wasteGroup.POST("", append(consuming(cfg), wasteHandler.Log)...)
		wasteGroup.GET("", wasteHandler.List)
		wasteGroup.GET("/:id", wasteHandler.Get)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewStockHandler(base, cfg.Services.Stock)

	stockGroup := rg.Group("/stock")
	{
		stockGroup.GET("/movements", h.GetByRecorder)
		stockGroup.GET("/ingredients/:id/movements", h.GetIngredientHistory)
	}
}
