package waste_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/domain/waste"
	"brewpos/internal/infrastructure/storage/memory"
)

type fixture struct {
	ingredients *memory.IngredientRepo
	products    *memory.ProductRepo
	repo        *memory.WasteRepo
	service     *waste.Service

	flour     *catalog.Ingredient
	milk      *catalog.Ingredient
	latte     *catalog.Product
	croissant *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	f := &fixture{
		ingredients: memory.NewIngredientRepo(store),
		products:    memory.NewProductRepo(store),
		repo:        memory.NewWasteRepo(store),
	}
	recipes := memory.NewRecipeRepo(store)
	engine := consumption.NewEngine(store, f.ingredients, f.products, recipes,
		stock.NewService(memory.NewMovementRepo(store)),
		consumption.NewCupCatalog(map[string]string{"HOT_M": "Hot Cup Medium"}))
	f.service = waste.NewService(store, f.repo, f.ingredients, engine,
		memory.NewNumerator(store), audit.NewRecorder(memory.NewAuditSink()), "")

	f.flour = &catalog.Ingredient{ID: id.New(), Name: "Flour", Unit: "gr", Stock: types.NewQuantity(5000), CostPerUnit: types.MustMoney("0.002")}
	f.milk = &catalog.Ingredient{ID: id.New(), Name: "Milk", Unit: "ml", Stock: types.NewQuantity(1000), CostPerUnit: types.MustMoney("0.05")}
	cup := &catalog.Ingredient{ID: id.New(), Name: "Hot Cup Medium", Unit: "adet", Stock: types.NewQuantity(10)}
	for _, ing := range []*catalog.Ingredient{f.flour, f.milk, cup} {
		require.NoError(t, f.ingredients.Create(ctx, ing))
	}

	f.latte = &catalog.Product{
		ID: id.New(), Name: "Latte", Category: "Coffee", Policy: catalog.PolicyRecipeRequired,
		Serving: catalog.Serving{Temperature: catalog.TemperatureHot},
		Price:   types.MustMoney("4.50"), Active: true,
	}
	f.croissant = &catalog.Product{
		ID: id.New(), Name: "Croissant", Category: "Bakery", Policy: catalog.PolicyUnitTracked,
		Serving: catalog.Serving{Temperature: catalog.TemperatureNone},
		Stock:   types.NewQuantity(4), Price: types.MustMoney("3.00"), Active: true,
	}
	require.NoError(t, f.products.Create(ctx, f.latte))
	require.NoError(t, f.products.Create(ctx, f.croissant))

	r := &recipe.Recipe{ID: id.New(), ProductID: f.latte.ID, Size: catalog.SizeMedium.Ptr()}
	r.Items = []recipe.Item{{ID: id.New(), RecipeID: r.ID, IngredientID: f.milk.ID, Quantity: types.NewQuantity(200)}}
	require.NoError(t, recipes.Replace(ctx, r))
	return f
}

func (f *fixture) ingredientStock(t *testing.T, ingredientID id.ID) types.Quantity {
	t.Helper()
	got, err := f.ingredients.GetByID(context.Background(), ingredientID)
	require.NoError(t, err)
	return got.Stock
}

func TestLog_IngredientConvertsUnits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.service.Log(ctx, waste.Input{
		IngredientID: &f.flour.ID,
		Quantity:     types.NewQuantityFromFloat64(1.5),
		Unit:         "kg",
		Reason:       "bag torn",
	})
	require.NoError(t, err)

	assert.Regexp(t, `^WST-\d{4}-00001$`, l.Number)
	assert.Equal(t, stock.ItemIngredient, l.TargetKind)
	assert.Equal(t, "kg", l.Unit)
	assert.Equal(t, types.NewQuantity(1500), l.StockQuantity)
	assert.Equal(t, types.NewQuantity(3500), f.ingredientStock(t, f.flour.ID))

	require.NotNil(t, l.Cost)
	assert.Equal(t, "3.00", l.Cost.StringFixed(2))
	require.NotNil(t, l.ExpenseID)

	expenses, err := f.repo.Expenses(ctx)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Waste", expenses[0].Category)
	assert.Equal(t, "3.00", expenses[0].Amount.StringFixed(2))
	assert.Equal(t, l.ID, *expenses[0].SourceWasteID)
}

func TestLog_IngredientDefaultsToStockUnit(t *testing.T) {
	f := newFixture(t)

	l, err := f.service.Log(context.Background(), waste.Input{
		IngredientID: &f.milk.ID,
		Quantity:     types.NewQuantity(100),
		Reason:       "spilled",
	})
	require.NoError(t, err)
	assert.Equal(t, "ml", l.Unit)
	assert.Equal(t, types.NewQuantity(900), f.ingredientStock(t, f.milk.ID))
}

func TestLog_IncompatibleUnit(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Log(context.Background(), waste.Input{
		IngredientID: &f.milk.ID,
		Quantity:     types.NewQuantity(1),
		Unit:         "kg",
		Reason:       "spilled",
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, types.NewQuantity(1000), f.ingredientStock(t, f.milk.ID))
}

func TestLog_ProductThroughRecipe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.service.Log(ctx, waste.Input{
		ProductID: &f.latte.ID,
		Size:      "M",
		Quantity:  types.NewQuantity(2),
		Reason:    "dropped",
	})
	require.NoError(t, err)

	assert.Equal(t, stock.ItemProduct, l.TargetKind)
	assert.Equal(t, "unit", l.Unit)
	assert.Equal(t, catalog.SizeMedium, catalog.SizeFromPtr(l.Size))
	require.NotNil(t, l.Cost)
	assert.Equal(t, "20.00", l.Cost.StringFixed(2))
	assert.Equal(t, types.NewQuantity(600), f.ingredientStock(t, f.milk.ID))

	cup, err := f.ingredients.FindByName(ctx, "Hot Cup Medium")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), cup.Stock, "waste never takes a cup")

	p, err := f.products.GetByID(ctx, f.latte.ID)
	require.NoError(t, err)
	assert.True(t, p.SoldCount.IsZero())
}

func TestLog_UnitTrackedProductHasNoCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.service.Log(ctx, waste.Input{
		ProductID: &f.croissant.ID,
		Quantity:  types.NewQuantity(1),
		Reason:    "stale",
	})
	require.NoError(t, err)
	assert.Nil(t, l.Cost)
	assert.Nil(t, l.ExpenseID)

	p, err := f.products.GetByID(ctx, f.croissant.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(3), p.Stock)

	expenses, err := f.repo.Expenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)
}

func TestLog_ProductUnit(t *testing.T) {
	tests := []struct {
		name    string
		unit    string
		wantErr bool
	}{
		{name: "blank", unit: ""},
		{name: "unit", unit: "unit"},
		{name: "unit in capitals", unit: " UNIT "},
		{name: "mass", unit: "kg", wantErr: true},
		{name: "volume", unit: "ml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			l, err := f.service.Log(ctx, waste.Input{
				ProductID: &f.croissant.ID,
				Quantity:  types.NewQuantity(1),
				Unit:      tt.unit,
				Reason:    "stale",
			})

			p, getErr := f.products.GetByID(ctx, f.croissant.ID)
			require.NoError(t, getErr)
			logs, listErr := f.service.List(ctx, waste.ListFilter{})
			require.NoError(t, listErr)

			if tt.wantErr {
				require.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
				assert.Equal(t, types.NewQuantity(4), p.Stock)
				assert.Empty(t, logs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "unit", l.Unit)
			assert.Equal(t, types.NewQuantity(3), p.Stock)
			assert.Len(t, logs, 1)
		})
	}
}

func TestLog_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Log(context.Background(), waste.Input{
		IngredientID: &f.milk.ID,
		Quantity:     types.NewQuantity(2),
		Unit:         "l",
		Reason:       "spilled",
	})
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	logs, err := f.service.List(context.Background(), waste.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestList_TotalCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, in := range []waste.Input{
		{IngredientID: &f.milk.ID, Quantity: types.NewQuantity(100), Reason: "spilled"},
		{ProductID: &f.croissant.ID, Quantity: types.NewQuantity(1), Reason: "stale"},
	} {
		_, err := f.service.Log(ctx, in)
		require.NoError(t, err)
	}

	logs, err := f.service.List(ctx, waste.ListFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "5.00", waste.Total(logs).StringFixed(2))

	kind := stock.ItemIngredient
	logs, err = f.service.List(ctx, waste.ListFilter{TargetKind: &kind})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
