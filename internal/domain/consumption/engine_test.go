package consumption_test

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/infrastructure/storage/memory"
)

type fixture struct {
	store       *memory.Store
	ingredients *memory.IngredientRepo
	products    *memory.ProductRepo
	recipes     *memory.RecipeRepo
	register    *stock.Service
	engine      *consumption.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	f := &fixture{
		store:       store,
		ingredients: memory.NewIngredientRepo(store),
		products:    memory.NewProductRepo(store),
		recipes:     memory.NewRecipeRepo(store),
		register:    stock.NewService(memory.NewMovementRepo(store)),
	}
	cups := consumption.NewCupCatalog(map[string]string{
		"HOT_S":  "Hot Cup Small",
		"HOT_M":  "Hot Cup Medium",
		"HOT_L":  "Hot Cup Large",
		"COLD_S": "Cold Cup Small",
		"COLD_M": "Cold Cup Medium",
		"COLD_L": "Cold Cup Large",
	})
	f.engine = consumption.NewEngine(store, f.ingredients, f.products, f.recipes, f.register, cups)
	return f
}

func (f *fixture) ingredient(t *testing.T, name, unit string, stockQty int64, cost string) *catalog.Ingredient {
	t.Helper()
	ing := &catalog.Ingredient{
		ID:          id.New(),
		Name:        name,
		Unit:        unit,
		Stock:       types.NewQuantity(stockQty),
		CostPerUnit: types.MustMoney(cost),
	}
	require.NoError(t, f.ingredients.Create(context.Background(), ing))
	return ing
}

func (f *fixture) product(t *testing.T, name string, policy catalog.CategoryPolicy, temp catalog.Temperature) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		ID:       id.New(),
		Name:     name,
		Category: "Coffee",
		Policy:   policy,
		Serving:  catalog.Serving{Temperature: temp},
		Price:    types.MustMoney("4.50"),
		Active:   true,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) recipe(t *testing.T, p *catalog.Product, size catalog.Size, items map[*catalog.Ingredient]int64) *recipe.Recipe {
	t.Helper()
	r := &recipe.Recipe{ID: id.New(), ProductID: p.ID, Size: size.Ptr()}
	for ing, qty := range items {
		r.Items = append(r.Items, recipe.Item{
			ID:           id.New(),
			RecipeID:     r.ID,
			IngredientID: ing.ID,
			Quantity:     types.NewQuantity(qty),
		})
	}
	require.NoError(t, f.recipes.Replace(context.Background(), r))
	return r
}

func (f *fixture) stockOf(t *testing.T, ing *catalog.Ingredient) types.Quantity {
	t.Helper()
	got, err := f.ingredients.GetByID(context.Background(), ing.ID)
	require.NoError(t, err)
	return got.Stock
}

func (f *fixture) productOf(t *testing.T, p *catalog.Product) *catalog.Product {
	t.Helper()
	got, err := f.products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	return got
}

func sale(lines ...consumption.Line) consumption.Request {
	return consumption.Request{
		RecorderID:    id.New(),
		RecorderType:  stock.RecorderOrder,
		Lines:         lines,
		ServeInCups:   true,
		CountSales:    true,
		RequireActive: true,
	}
}

func line(p *catalog.Product, size catalog.Size, qty int64) consumption.Line {
	return consumption.Line{ProductID: p.ID, Size: size, Quantity: types.NewQuantity(qty)}
}

// latteSetup is Milk 1000 ml at 0.05 and a Latte (M) recipe of 200 ml Milk.
func latteSetup(t *testing.T) (*fixture, *catalog.Ingredient, *catalog.Product) {
	f := newFixture(t)
	milk := f.ingredient(t, "Milk", "ml", 1000, "0.05")
	latte := f.product(t, "Latte", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	f.recipe(t, latte, catalog.SizeMedium, map[*catalog.Ingredient]int64{milk: 200})
	return f, milk, latte
}

func TestConsume_DecrementsAndCosts(t *testing.T) {
	f, milk, latte := latteSetup(t)

	res, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 4)))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantity(200), f.stockOf(t, milk))
	require.Len(t, res.Lines, 1)
	assert.Equal(t, "10.00", res.Lines[0].UnitCost.StringFixed(2))
	assert.Equal(t, "40.00", res.Lines[0].Cost.StringFixed(2))
	assert.Equal(t, "40.00", res.TotalCost.StringFixed(2))

	got := f.productOf(t, latte)
	assert.Equal(t, types.NewQuantity(4), got.SoldCount)
	assert.Equal(t, types.Quantity(0), got.Stock, "recipe products never draw on their own stock")

	require.Len(t, res.Movements, 1)
	m := res.Movements[0]
	assert.Equal(t, stock.RecordTypeExpense, m.RecordType)
	assert.Equal(t, milk.ID, m.ItemID)
	assert.Equal(t, types.NewQuantity(800), m.Quantity)
	assert.Equal(t, types.NewQuantity(200), m.StockAfter)
	require.NotNil(t, m.ProductID)
	assert.Equal(t, latte.ID, *m.ProductID)
}

func TestConsume_InsufficientStockNamesIngredient(t *testing.T) {
	f, milk, latte := latteSetup(t)

	_, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 6)))
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "Milk", appErr.Details["ingredient_name"])
	assert.Equal(t, "Latte", appErr.Details["product_name"])
	assert.Equal(t, 1000.0, appErr.Details["remaining"])
	assert.Equal(t, 1200.0, appErr.Details["required"])
	assert.Equal(t, "ml", appErr.Details["unit"])

	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
	assert.True(t, f.productOf(t, latte).SoldCount.IsZero())
}

func TestConsume_AllOrNothing(t *testing.T) {
	f, milk, latte := latteSetup(t)
	beans := f.ingredient(t, "Coffee Beans", "gr", 500, "0.40")
	espresso := f.product(t, "Espresso", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	f.recipe(t, espresso, catalog.SizeNone, map[*catalog.Ingredient]int64{beans: 18})

	req := sale(line(espresso, catalog.SizeNone, 2), line(latte, catalog.SizeMedium, 6))
	_, err := f.engine.Consume(context.Background(), req)
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	assert.Equal(t, types.NewQuantity(500), f.stockOf(t, beans), "fulfillable line must not be applied")
	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
	assert.True(t, f.productOf(t, espresso).SoldCount.IsZero())

	movements, err := f.register.GetByRecorder(context.Background(), req.RecorderID)
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestConsume_SharedIngredientCheckedAcrossLines(t *testing.T) {
	f, milk, latte := latteSetup(t)

	_, err := f.engine.Consume(context.Background(), sale(
		line(latte, catalog.SizeMedium, 3),
		line(latte, catalog.SizeMedium, 3),
	))
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, 2, appErr.Details["line"])
	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
}

func TestConsume_FractionalQuantitiesAreNotTruncated(t *testing.T) {
	f := newFixture(t)
	syrup := f.ingredient(t, "Vanilla Syrup", "ml", 10, "0.10")
	shot := f.product(t, "Vanilla Shot", catalog.PolicyRecipeRequired, catalog.TemperatureNone)

	r := &recipe.Recipe{ID: id.New(), ProductID: shot.ID}
	r.Items = []recipe.Item{{ID: id.New(), RecipeID: r.ID, IngredientID: syrup.ID, Quantity: types.NewQuantityFromFloat64(3.3333)}}
	require.NoError(t, f.recipes.Replace(context.Background(), r))

	_, err := f.engine.Consume(context.Background(), sale(line(shot, catalog.SizeNone, 3)))
	require.NoError(t, err)
	assert.Equal(t, "0.0001", f.stockOf(t, syrup).String())

	_, err = f.engine.Consume(context.Background(), sale(line(shot, catalog.SizeNone, 1)))
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
}

func TestConsume_NoRecipeDefined(t *testing.T) {
	f := newFixture(t)
	mocha := f.product(t, "Mocha", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	require.NoError(t, f.products.SetCounters(context.Background(), mocha.ID, types.NewQuantity(50), 0))

	_, err := f.engine.Consume(context.Background(), sale(line(mocha, catalog.SizeMedium, 1)))
	require.True(t, apperror.HasCode(err, apperror.CodeNoRecipe))

	assert.Equal(t, types.NewQuantity(50), f.productOf(t, mocha).Stock)
}

func TestConsume_UnitTrackedProduct(t *testing.T) {
	f := newFixture(t)
	croissant := f.product(t, "Croissant", catalog.PolicyUnitTracked, catalog.TemperatureNone)
	require.NoError(t, f.products.SetCounters(context.Background(), croissant.ID, types.NewQuantity(3), 0))

	res, err := f.engine.Consume(context.Background(), sale(line(croissant, catalog.SizeNone, 2)))
	require.NoError(t, err)
	assert.True(t, res.TotalCost.IsZero())
	assert.Nil(t, res.Lines[0].Recipe)

	got := f.productOf(t, croissant)
	assert.Equal(t, types.NewQuantity(1), got.Stock)
	assert.Equal(t, types.NewQuantity(2), got.SoldCount)

	_, err = f.engine.Consume(context.Background(), sale(line(croissant, catalog.SizeNone, 2)))
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Croissant", appErr.Details["product_name"])
	assert.Equal(t, "unit", appErr.Details["unit"])
	assert.Equal(t, 1.0, appErr.Details["remaining"])
	assert.Equal(t, types.NewQuantity(1), f.productOf(t, croissant).Stock)
}

func TestConsume_UnitTrackedProductPrefersRecipe(t *testing.T) {
	f := newFixture(t)
	dough := f.ingredient(t, "Cookie Dough", "gr", 100, "0.02")
	cookie := f.product(t, "Cookie", catalog.PolicyUnitTracked, catalog.TemperatureNone)
	require.NoError(t, f.products.SetCounters(context.Background(), cookie.ID, types.NewQuantity(5), 0))
	f.recipe(t, cookie, catalog.SizeNone, map[*catalog.Ingredient]int64{dough: 40})

	_, err := f.engine.Consume(context.Background(), sale(line(cookie, catalog.SizeNone, 2)))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantity(20), f.stockOf(t, dough))
	assert.Equal(t, types.NewQuantity(5), f.productOf(t, cookie).Stock)
}

func TestConsume_GenericRecipeServesEverySize(t *testing.T) {
	f := newFixture(t)
	water := f.ingredient(t, "Water", "ml", 10000, "0")
	americano := f.product(t, "Americano", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	f.recipe(t, americano, catalog.SizeNone, map[*catalog.Ingredient]int64{water: 250})

	for _, size := range []catalog.Size{catalog.SizeSmall, catalog.SizeMedium, catalog.SizeLarge, catalog.SizeNone} {
		_, err := f.engine.Consume(context.Background(), sale(line(americano, size, 1)))
		require.NoError(t, err, "size %s", size)
	}
	assert.Equal(t, types.NewQuantity(9000), f.stockOf(t, water))
}

func TestConsume_CupSideDeduction(t *testing.T) {
	f, milk, latte := latteSetup(t)
	hotMedium := f.ingredient(t, "Hot Cup Medium", "adet", 10, "0.12")
	coldLarge := f.ingredient(t, "Cold Cup Large", "adet", 10, "0.15")

	ice := f.ingredient(t, "Ice", "gr", 1000, "0")
	icedLatte := f.product(t, "Iced Latte", catalog.PolicyRecipeRequired, catalog.TemperatureCold)
	f.recipe(t, icedLatte, catalog.SizeLarge, map[*catalog.Ingredient]int64{milk: 100, ice: 100})

	res, err := f.engine.Consume(context.Background(), sale(
		line(latte, catalog.SizeMedium, 2),
		line(icedLatte, catalog.SizeLarge, 1),
	))
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantity(8), f.stockOf(t, hotMedium))
	assert.Equal(t, types.NewQuantity(9), f.stockOf(t, coldLarge))
	require.NotNil(t, res.Lines[0].Cup)
	assert.Equal(t, "Hot Cup Medium", res.Lines[0].Cup.Name)
	assert.Equal(t, "20.00", res.Lines[0].Cost.StringFixed(2), "cup is not part of the recipe cost")
}

func TestConsume_CupOptOuts(t *testing.T) {
	f, _, latte := latteSetup(t)
	hotMedium := f.ingredient(t, "Hot Cup Medium", "adet", 10, "0.12")

	tea := f.product(t, "Tea", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	require.NoError(t, f.products.Update(context.Background(), &catalog.Product{
		ID: tea.ID, Name: tea.Name, Category: tea.Category, Policy: tea.Policy,
		Serving: catalog.Serving{Temperature: catalog.TemperatureHot, ReusableWare: true},
		Price:   tea.Price, Active: true,
	}))
	leaves := f.ingredient(t, "Tea Leaves", "gr", 100, "0.30")
	f.recipe(t, tea, catalog.SizeNone, map[*catalog.Ingredient]int64{leaves: 3})

	reusable := line(latte, catalog.SizeMedium, 1)
	reusable.ReusableWare = true
	_, err := f.engine.Consume(context.Background(), sale(reusable, line(tea, catalog.SizeNone, 1)))
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t, hotMedium))

	noCups := sale(line(latte, catalog.SizeMedium, 1))
	noCups.ServeInCups = false
	_, err = f.engine.Consume(context.Background(), noCups)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t, hotMedium))
}

func TestConsume_MissingCupIsSkipped(t *testing.T) {
	f, milk, latte := latteSetup(t)

	res, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 1)))
	require.NoError(t, err)
	assert.Nil(t, res.Lines[0].Cup)
	assert.Equal(t, types.NewQuantity(800), f.stockOf(t, milk))
	assert.Len(t, res.Movements, 1)
}

func TestConsume_ShortCupRejects(t *testing.T) {
	f, milk, latte := latteSetup(t)
	f.ingredient(t, "Hot Cup Medium", "adet", 1, "0.12")

	_, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 2)))
	require.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "Hot Cup Medium", appErr.Details["ingredient_name"])
	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
}

func TestConsume_InactiveAndUnknownProducts(t *testing.T) {
	f, _, latte := latteSetup(t)
	require.NoError(t, f.products.Update(context.Background(), &catalog.Product{
		ID: latte.ID, Name: latte.Name, Category: latte.Category, Policy: latte.Policy,
		Serving: latte.Serving, Price: latte.Price, Active: false,
	}))

	_, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 1)))
	assert.True(t, apperror.HasCode(err, apperror.CodeProductInactive))

	_, err = f.engine.Consume(context.Background(), consumption.Request{
		RecorderID:   id.New(),
		RecorderType: stock.RecorderOrder,
		Lines:        []consumption.Line{{ProductID: id.New(), Quantity: types.NewQuantity(1)}},
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestConsume_RejectsEmptyAndNonPositive(t *testing.T) {
	f, _, latte := latteSetup(t)

	_, err := f.engine.Consume(context.Background(), sale())
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 0)))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestConsume_DirectIngredientLine(t *testing.T) {
	f, milk, _ := latteSetup(t)

	res, err := f.engine.Consume(context.Background(), consumption.Request{
		RecorderID:   id.New(),
		RecorderType: stock.RecorderWaste,
		Ingredients:  []consumption.IngredientLine{{IngredientID: milk.ID, Quantity: types.NewQuantity(150)}},
	})
	require.NoError(t, err)

	assert.Equal(t, types.NewQuantity(850), f.stockOf(t, milk))
	require.Len(t, res.Ingredients, 1)
	assert.Equal(t, 1, res.Ingredients[0].LineNo)
	assert.Equal(t, "7.50", res.Ingredients[0].Cost.StringFixed(2))
	assert.Nil(t, res.Movements[0].ProductID)
}

func TestConsume_JoinsCallerTransaction(t *testing.T) {
	f, milk, latte := latteSetup(t)

	err := f.store.RunInTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := f.engine.Consume(ctx, sale(line(latte, catalog.SizeMedium, 1))); err != nil {
			return err
		}
		return apperror.NewConflict("caller failed after consumption")
	})
	require.Error(t, err)

	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk), "caller rollback must undo the consumption")
}

func TestRestock(t *testing.T) {
	f, milk, _ := latteSetup(t)

	m, err := f.engine.Restock(context.Background(), consumption.RestockRequest{
		Kind:     stock.ItemIngredient,
		ItemID:   milk.ID,
		Quantity: types.NewQuantity(500),
	})
	require.NoError(t, err)
	assert.Equal(t, stock.RecordTypeReceipt, m.RecordType)
	assert.Equal(t, stock.RecorderRestock, m.RecorderType)
	assert.Equal(t, types.NewQuantity(1500), m.StockAfter)
	assert.Equal(t, types.NewQuantity(1500), f.stockOf(t, milk))

	_, err = f.engine.Restock(context.Background(), consumption.RestockRequest{
		Kind: stock.ItemIngredient, ItemID: milk.ID, Quantity: 0,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.engine.Restock(context.Background(), consumption.RestockRequest{
		Kind: stock.ItemProduct, ItemID: id.New(), Quantity: types.NewQuantity(1),
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestReverse_RestoresOnce(t *testing.T) {
	f, milk, latte := latteSetup(t)
	cup := f.ingredient(t, "Hot Cup Medium", "adet", 10, "0.12")

	req := sale(line(latte, catalog.SizeMedium, 2))
	_, err := f.engine.Consume(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, types.NewQuantity(600), f.stockOf(t, milk))

	reverse := consumption.ReverseRequest{
		SourceRecorderID: req.RecorderID,
		RecorderType:     stock.RecorderOrderCancel,
		Sales:            map[id.ID]types.Quantity{latte.ID: types.NewQuantity(2)},
	}
	restored, err := f.engine.Reverse(context.Background(), reverse)
	require.NoError(t, err)
	assert.Len(t, restored, 2)
	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
	assert.Equal(t, types.NewQuantity(10), f.stockOf(t, cup))
	assert.True(t, f.productOf(t, latte).SoldCount.IsZero())

	restored, err = f.engine.Reverse(context.Background(), reverse)
	require.NoError(t, err)
	assert.Empty(t, restored)
	assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
	assert.True(t, f.productOf(t, latte).SoldCount.IsZero(), "sold count never goes below zero")
}

func TestConservation(t *testing.T) {
	f, milk, latte := latteSetup(t)
	croissant := f.product(t, "Croissant", catalog.PolicyUnitTracked, catalog.TemperatureNone)
	require.NoError(t, f.products.SetCounters(context.Background(), croissant.ID, types.NewQuantity(10), 0))
	ctx := context.Background()

	var recorders []id.ID
	record := func(req consumption.Request) {
		if _, err := f.engine.Consume(ctx, req); err == nil {
			recorders = append(recorders, req.RecorderID)
		}
	}

	record(sale(line(latte, catalog.SizeMedium, 2)))
	record(sale(line(latte, catalog.SizeMedium, 9))) // rejected
	record(sale(line(croissant, catalog.SizeNone, 4), line(latte, catalog.SizeMedium, 1)))
	record(consumption.Request{
		RecorderID:   id.New(),
		RecorderType: stock.RecorderWaste,
		Ingredients:  []consumption.IngredientLine{{IngredientID: milk.ID, Quantity: types.NewQuantityFromFloat64(12.5)}},
	})

	m, err := f.engine.Restock(ctx, consumption.RestockRequest{Kind: stock.ItemIngredient, ItemID: milk.ID, Quantity: types.NewQuantity(300)})
	require.NoError(t, err)
	recorders = append(recorders, m.RecorderID)

	_, err = f.engine.Reverse(ctx, consumption.ReverseRequest{SourceRecorderID: recorders[0], RecorderType: stock.RecorderOrderCancel})
	require.NoError(t, err)

	net := map[stock.ItemKey]types.Quantity{}
	for _, rid := range recorders {
		movements, err := f.register.GetByRecorder(ctx, rid)
		require.NoError(t, err)
		for k, q := range stock.NetByItem(movements) {
			net[k] += q
		}
	}

	milkKey := stock.ItemKey{Kind: stock.ItemIngredient, ID: milk.ID}
	assert.Equal(t, types.NewQuantity(1000)+net[milkKey], f.stockOf(t, milk))

	croissantKey := stock.ItemKey{Kind: stock.ItemProduct, ID: croissant.ID}
	assert.Equal(t, types.NewQuantity(10)+net[croissantKey], f.productOf(t, croissant).Stock)
	assert.False(t, f.stockOf(t, milk).IsNegative())
}

func TestConsume_QuantityOverflowIsRejected(t *testing.T) {
	f := newFixture(t)
	milk := f.ingredient(t, "Milk", "ml", 1000, "0.05")
	latte := f.product(t, "Latte", catalog.PolicyRecipeRequired, catalog.TemperatureHot)
	f.recipe(t, latte, catalog.SizeMedium, map[*catalog.Ingredient]int64{milk: 1000})
	batch := f.product(t, "Milk Batch", catalog.PolicyRecipeRequired, catalog.TemperatureNone)
	f.recipe(t, batch, catalog.SizeMedium, map[*catalog.Ingredient]int64{milk: 1_000_000})

	tests := []struct {
		name    string
		product *catalog.Product
		qty     types.Quantity
	}{
		// scaled demand 1000 × 1844674407370.9552 would wrap int64 to 0.0384 ml
		{name: "line above maximum", product: latte, qty: types.Quantity(18_446_744_073_709_552)},
		// the line is within bounds, the recipe demand is not
		{name: "recipe demand beyond int64", product: batch, qty: types.MaxQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sale(consumption.Line{ProductID: tt.product.ID, Size: catalog.SizeMedium, Quantity: tt.qty})
			req.ServeInCups = false

			_, err := f.engine.Consume(context.Background(), req)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)

			assert.Equal(t, types.NewQuantity(1000), f.stockOf(t, milk))
			assert.True(t, f.productOf(t, tt.product).SoldCount.IsZero())
		})
	}

	history, err := f.register.GetHistory(context.Background(), stock.ItemIngredient, milk.ID, stock.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestConsume_SummedDemandOverflowIsRejected(t *testing.T) {
	f := newFixture(t)
	syrup := f.ingredient(t, "Syrup", "ml", 0, "0.01")
	require.NoError(t, f.ingredients.SetStock(context.Background(), syrup.ID, types.Quantity(math.MaxInt64)))
	drink := f.product(t, "Syrup Shot", catalog.PolicyRecipeRequired, catalog.TemperatureNone)
	f.recipe(t, drink, catalog.SizeNone, map[*catalog.Ingredient]int64{syrup: 900_000})

	// each line alone fits in stock; the running total per ingredient does not fit int64
	line := consumption.Line{ProductID: drink.ID, Quantity: types.MaxQuantity}
	_, err := f.engine.Consume(context.Background(), sale(line, line))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
	assert.Equal(t, types.Quantity(math.MaxInt64), f.stockOf(t, syrup))
}

func TestRestock_OverflowIsRejected(t *testing.T) {
	f := newFixture(t)
	milk := f.ingredient(t, "Milk", "ml", 1000, "0.05")

	_, err := f.engine.Restock(context.Background(), consumption.RestockRequest{
		Kind: stock.ItemIngredient, ItemID: milk.ID, Quantity: types.MaxQuantity + 1,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	require.NoError(t, f.ingredients.SetStock(context.Background(), milk.ID, types.Quantity(9_223_372_036_854_000_000)))
	_, err = f.engine.Restock(context.Background(), consumption.RestockRequest{
		Kind: stock.ItemIngredient, ItemID: milk.ID, Quantity: types.MaxQuantity,
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	assert.Equal(t, types.Quantity(9_223_372_036_854_000_000), f.stockOf(t, milk))
}

func TestConsume_ConcurrentSalesNeverOversell(t *testing.T) {
	f, milk, latte := latteSetup(t)

	// 1000 ml serves five 200 ml lattes
	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		short     int
		other     []error
	)

	start := make(chan struct{})
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.engine.Consume(context.Background(), sale(line(latte, catalog.SizeMedium, 1)))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.HasCode(err, apperror.CodeInsufficientStock):
				short++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Empty(t, other)
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, attempts-5, short)
	assert.True(t, f.stockOf(t, milk).IsZero())
	assert.Equal(t, types.NewQuantity(5), f.productOf(t, latte).SoldCount)

	history, err := f.register.GetHistory(context.Background(), stock.ItemIngredient, milk.ID, stock.MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, history, 5)
}
