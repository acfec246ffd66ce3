package app

import (
	"brewpos/internal/config"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/costing"
	"brewpos/internal/domain/orders"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/domain/waste"
)

// Services are the application services over one Storage.
type Services struct {
	Catalog    *catalog.Service
	Recipes    *recipe.Service
	Stock      *stock.Service
	Engine     *consumption.Engine
	Costs      *costing.Evaluator
	Orders     *orders.Service
	StaffMeals *staffmeal.Service
	Waste      *waste.Service
}

// NewServices wires every service to st using the consumption policy in cfg.
func NewServices(st *Storage, cfg config.EngineConfig) *Services {
	rec := audit.NewRecorder(st.AuditSink)
	register := stock.NewService(st.Movements)

	engine := consumption.NewEngine(st.TxManager, st.Ingredients, st.Products, st.Recipes,
		register, consumption.NewCupCatalog(cfg.CupIngredients))
	costs := costing.NewEvaluator(st.TxManager, st.Products, st.Ingredients, st.Recipes)

	defaults := catalog.Defaults{
		UnitTrackedCategories: cfg.UnitTrackedCategories,
		ColdTokens:            cfg.ColdTokens,
		ReusableWareProducts:  cfg.ReusableWareProducts,
	}

	return &Services{
		Catalog: catalog.NewService(st.TxManager, st.Ingredients, st.Products, defaults, rec),
		Recipes: recipe.NewService(st.TxManager, st.Recipes, st.Products, st.Ingredients, rec),
		Stock:   register,
		Engine:  engine,
		Costs:   costs,
		Orders: orders.NewService(st.TxManager, st.Orders, engine, costs, st.Numerator, rec,
			orders.Options{CancelRestock: cfg.OrderCancelRestock}),
		StaffMeals: staffmeal.NewService(st.TxManager, st.StaffConsumptions, engine, costs, st.Numerator, rec,
			cfg.StaffDiscountRate),
		Waste: waste.NewService(st.TxManager, st.Waste, st.Ingredients, engine, st.Numerator, rec,
			cfg.WasteExpenseCategory),
	}
}
