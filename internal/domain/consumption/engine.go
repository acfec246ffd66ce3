package consumption

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/pkg/logger"
)

var tracer = otel.Tracer("brewpos/consumption")

// productUnit is reported as the unit of a unit-tracked product's own stock.
const productUnit = "unit"

// Engine is the single writer of Ingredient.Stock, Product.Stock and Product.SoldCount.
type Engine struct {
	txManager   tx.Manager
	ingredients catalog.IngredientRepository
	products    catalog.ProductRepository
	recipes     recipe.Repository
	register    *stock.Service
	cups        CupCatalog
}

// NewEngine creates the consumption engine.
func NewEngine(
	txManager tx.Manager,
	ingredients catalog.IngredientRepository,
	products catalog.ProductRepository,
	recipes recipe.Repository,
	register *stock.Service,
	cups CupCatalog,
) *Engine {
	return &Engine{
		txManager:   txManager,
		ingredients: ingredients,
		products:    products,
		recipes:     recipes,
		register:    register,
		cups:        cups,
	}
}

// requirement is one stock draw: a recipe item, a cup, a unit-tracked product or a direct ingredient.
type requirement struct {
	lineNo  int
	key     stock.ItemKey
	qty     types.Quantity
	product *catalog.Product
}

type plannedLine struct {
	lineNo  int
	line    Line
	product *catalog.Product
	recipe  *recipe.Recipe
	cup     *catalog.Ingredient
}

// Consume validates the whole request against current stock and, only if every line
// can be fulfilled, applies all decrements. It joins the caller's transaction when ctx
// carries one; on any error nothing is written.
func (e *Engine) Consume(ctx context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var result *Result
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ctx, span := tracer.Start(ctx, "consumption.consume", trace.WithAttributes(
			attribute.String("recorder.type", string(req.RecorderType)),
			attribute.String("recorder.id", req.RecorderID.String()),
			attribute.Int("lines", len(req.Lines)+len(req.Ingredients)),
		))
		defer span.End()

		lines, err := e.planLines(ctx, req)
		if err != nil {
			return err
		}

		reqs, err := requirements(req, lines)
		if err != nil {
			return err
		}

		ingredients, err := e.lockIngredients(ctx, reqs)
		if err != nil {
			return err
		}

		products := make(map[id.ID]*catalog.Product, len(lines))
		for _, pl := range lines {
			products[pl.product.ID] = pl.product
		}

		if err := checkAvailability(reqs, ingredients, products); err != nil {
			return err
		}

		result, err = e.apply(ctx, req, lines, reqs, ingredients, products)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateRequest(req Request) error {
	if id.IsNil(req.RecorderID) {
		return apperror.NewValidation("recorder id is required")
	}
	if len(req.Lines) == 0 && len(req.Ingredients) == 0 {
		return apperror.NewValidation("at least one line is required")
	}
	for i, l := range req.Lines {
		if err := validateQuantity(i+1, l.Quantity); err != nil {
			return err
		}
	}
	for i, l := range req.Ingredients {
		if err := validateQuantity(len(req.Lines)+i+1, l.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func validateQuantity(lineNo int, q types.Quantity) error {
	if !q.IsPositive() {
		return apperror.NewValidation(fmt.Sprintf("line %d: quantity must be greater than zero", lineNo))
	}
	if q > types.MaxQuantity {
		return quantityOutOfRange(lineNo)
	}
	return nil
}

// quantityOutOfRange rejects a line whose demand does not fit the fixed-point range.
func quantityOutOfRange(lineNo int) error {
	return apperror.NewValidation(fmt.Sprintf("line %d: quantity out of range", lineNo)).
		WithDetail("line", lineNo).
		WithDetail("max", types.MaxQuantity.String())
}

// planLines locks the requested products, resolves each line's recipe and its cup.
func (e *Engine) planLines(ctx context.Context, req Request) ([]plannedLine, error) {
	if len(req.Lines) == 0 {
		return nil, nil
	}

	productIDs := make([]id.ID, 0, len(req.Lines))
	for _, l := range req.Lines {
		productIDs = append(productIDs, l.ProductID)
	}
	productIDs = sortedUnique(productIDs)

	products, err := e.products.LockForUpdate(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}

	recipes, err := e.recipes.ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	cupsByName := make(map[string]*catalog.Ingredient)
	lines := make([]plannedLine, 0, len(req.Lines))

	for i, l := range req.Lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, apperror.NewNotFound("product", l.ProductID)
		}
		if req.RequireActive && !p.Active {
			return nil, apperror.NewBusinessRule(apperror.CodeProductInactive,
				fmt.Sprintf("%s is not available for sale", p.Name)).
				WithDetail("product_id", p.ID.String())
		}

		pl := plannedLine{lineNo: i + 1, line: l, product: p}
		pl.recipe = recipe.Select(recipes[p.ID], l.Size)
		if pl.recipe == nil && !p.IsUnitTracked() {
			return nil, apperror.NewNoRecipe(p.ID.String(), p.Name, l.Size.String())
		}

		if req.ServeInCups && !l.ReusableWare && p.NeedsCup() {
			pl.cup, err = e.findCup(ctx, p, l.Size, pl.lineNo, cupsByName)
			if err != nil {
				return nil, err
			}
		}

		lines = append(lines, pl)
	}
	return lines, nil
}

// findCup resolves the cup ingredient. A missing cup is not an error: the line is
// served without the side-deduction and the gap is logged.
func (e *Engine) findCup(ctx context.Context, p *catalog.Product, size catalog.Size, lineNo int, cache map[string]*catalog.Ingredient) (*catalog.Ingredient, error) {
	name, ok := e.cups.Name(p.Temperature, size)
	if !ok {
		logger.Warn(ctx, "no cup configured, skipping cup deduction",
			"product_id", p.ID, "product", p.Name, "line", lineNo,
			"temperature", p.Temperature, "size", size.OrMedium())
		return nil, nil
	}

	if cup, seen := cache[name]; seen {
		return cup, nil
	}

	cup, err := e.ingredients.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("find cup %q: %w", name, err)
	}
	cache[name] = cup

	if cup == nil {
		logger.Warn(ctx, "cup ingredient not found, skipping cup deduction",
			"product_id", p.ID, "product", p.Name, "line", lineNo,
			"temperature", p.Temperature, "size", size.OrMedium(), "cup", name)
	}
	return cup, nil
}

// requirements flattens the plan into stock draws, in line order.
func requirements(req Request, lines []plannedLine) ([]requirement, error) {
	var reqs []requirement
	for _, pl := range lines {
		switch {
		case pl.recipe != nil:
			for _, item := range pl.recipe.Items {
				qty, err := item.Quantity.Mul(pl.line.Quantity)
				if err != nil {
					return nil, quantityOutOfRange(pl.lineNo)
				}
				reqs = append(reqs, requirement{
					lineNo:  pl.lineNo,
					key:     stock.ItemKey{Kind: stock.ItemIngredient, ID: item.IngredientID},
					qty:     qty,
					product: pl.product,
				})
			}
		default:
			reqs = append(reqs, requirement{
				lineNo:  pl.lineNo,
				key:     stock.ItemKey{Kind: stock.ItemProduct, ID: pl.product.ID},
				qty:     pl.line.Quantity,
				product: pl.product,
			})
		}

		if pl.cup != nil {
			reqs = append(reqs, requirement{
				lineNo:  pl.lineNo,
				key:     stock.ItemKey{Kind: stock.ItemIngredient, ID: pl.cup.ID},
				qty:     pl.line.Quantity,
				product: pl.product,
			})
		}
	}

	for i, l := range req.Ingredients {
		reqs = append(reqs, requirement{
			lineNo: len(req.Lines) + i + 1,
			key:    stock.ItemKey{Kind: stock.ItemIngredient, ID: l.IngredientID},
			qty:    l.Quantity,
		})
	}
	return reqs, nil
}

// lockIngredients takes row locks on every ingredient the request draws from, in id order.
func (e *Engine) lockIngredients(ctx context.Context, reqs []requirement) (map[id.ID]*catalog.Ingredient, error) {
	ids := make([]id.ID, 0, len(reqs))
	for _, r := range reqs {
		if r.key.Kind == stock.ItemIngredient {
			ids = append(ids, r.key.ID)
		}
	}
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return map[id.ID]*catalog.Ingredient{}, nil
	}

	locked, err := e.ingredients.LockForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lock ingredients: %w", err)
	}
	for _, ingID := range ids {
		if _, ok := locked[ingID]; !ok {
			return nil, apperror.NewNotFound("ingredient", ingID)
		}
	}
	return locked, nil
}

// checkAvailability is the all-or-nothing pre-check. Draws on the same row are summed across
// lines, so the first line that pushes a row past its stock is the one reported.
func checkAvailability(reqs []requirement, ingredients map[id.ID]*catalog.Ingredient, products map[id.ID]*catalog.Product) error {
	drawn := make(map[stock.ItemKey]types.Quantity, len(reqs))

	for _, r := range reqs {
		total, err := drawn[r.key].Add(r.qty)
		if err != nil {
			return quantityOutOfRange(r.lineNo)
		}
		drawn[r.key] = total

		switch r.key.Kind {
		case stock.ItemIngredient:
			ing := ingredients[r.key.ID]
			if total <= ing.Stock {
				continue
			}
			s := apperror.Shortage{
				IngredientID:   ing.ID.String(),
				IngredientName: ing.Name,
				Unit:           ing.Unit,
				Remaining:      ing.Stock.Float64(),
				Required:       total.Float64(),
			}
			if r.product != nil {
				s.ProductID = r.product.ID.String()
				s.ProductName = r.product.Name
			}
			return apperror.NewInsufficientStock(s).WithDetail("line", r.lineNo)

		case stock.ItemProduct:
			p := products[r.key.ID]
			if total <= p.Stock {
				continue
			}
			return apperror.NewInsufficientStock(apperror.Shortage{
				ProductID:   p.ID.String(),
				ProductName: p.Name,
				Unit:        productUnit,
				Remaining:   p.Stock.Float64(),
				Required:    total.Float64(),
			}).WithDetail("line", r.lineNo)
		}
	}
	return nil
}

// apply writes every decrement, the sold counters and the journal.
func (e *Engine) apply(
	ctx context.Context,
	req Request,
	lines []plannedLine,
	reqs []requirement,
	ingredients map[id.ID]*catalog.Ingredient,
	products map[id.ID]*catalog.Product,
) (*Result, error) {
	movements := make([]stock.Movement, 0, len(reqs))
	touchedIngredients := make(map[id.ID]struct{})
	touchedProducts := make(map[id.ID]struct{})

	for _, r := range reqs {
		m := stock.NewMovement(req.RecorderID, req.RecorderType, r.lineNo, r.key.Kind, r.key.ID, stock.RecordTypeExpense, r.qty)
		if r.product != nil {
			pid := r.product.ID
			m.ProductID = &pid
		}

		switch r.key.Kind {
		case stock.ItemIngredient:
			ing := ingredients[r.key.ID]
			ing.Stock -= r.qty
			m.StockAfter = ing.Stock
			touchedIngredients[ing.ID] = struct{}{}
		case stock.ItemProduct:
			p := products[r.key.ID]
			p.Stock -= r.qty
			m.StockAfter = p.Stock
			touchedProducts[p.ID] = struct{}{}
		}
		movements = append(movements, m)
	}

	if req.CountSales {
		for _, pl := range lines {
			sold, err := pl.product.SoldCount.Add(pl.line.Quantity)
			if err != nil {
				return nil, quantityOutOfRange(pl.lineNo)
			}
			pl.product.SoldCount = sold
			touchedProducts[pl.product.ID] = struct{}{}
		}
	}

	for _, ingID := range sortedKeys(touchedIngredients) {
		if err := e.ingredients.SetStock(ctx, ingID, ingredients[ingID].Stock); err != nil {
			return nil, fmt.Errorf("update ingredient %s: %w", ingID, err)
		}
	}
	for _, pid := range sortedKeys(touchedProducts) {
		p := products[pid]
		if err := e.products.SetCounters(ctx, pid, p.Stock, p.SoldCount); err != nil {
			return nil, fmt.Errorf("update product %s: %w", pid, err)
		}
	}

	if err := e.register.RecordMovements(ctx, movements); err != nil {
		return nil, err
	}

	result := &Result{Movements: movements, TotalCost: types.Zero()}

	for _, pl := range lines {
		lr := LineResult{
			LineNo:   pl.lineNo,
			Line:     pl.line,
			Product:  pl.product,
			UnitCost: types.Zero(),
			Cost:     types.Zero(),
			Cup:      pl.cup,
		}
		if pl.recipe != nil {
			resolved, err := recipe.Bind(pl.recipe, ingredients)
			if err != nil {
				return nil, err
			}
			lr.Recipe = resolved
			lr.UnitCost = resolved.UnitCost()
			lr.Cost = lr.UnitCost.Mul(pl.line.Quantity.Decimal())
		}
		result.TotalCost = result.TotalCost.Add(lr.Cost)
		result.Lines = append(result.Lines, lr)
	}

	for i, l := range req.Ingredients {
		ing := ingredients[l.IngredientID]
		cost := l.Quantity.Cost(ing.CostPerUnit)
		result.Ingredients = append(result.Ingredients, IngredientResult{
			LineNo:     len(req.Lines) + i + 1,
			Ingredient: ing,
			Quantity:   l.Quantity,
			Cost:       cost,
		})
		result.TotalCost = result.TotalCost.Add(cost)
	}

	logger.Info(ctx, "stock consumed",
		"recorder_type", req.RecorderType,
		"recorder_id", req.RecorderID,
		"lines", len(req.Lines)+len(req.Ingredients),
		"movements", len(movements),
		"cost", result.TotalCost.String(),
	)

	return result, nil
}

// Restock adds stock to one ingredient or product and journals a receipt.
func (e *Engine) Restock(ctx context.Context, req RestockRequest) (*stock.Movement, error) {
	if !req.Quantity.IsPositive() {
		return nil, apperror.NewValidation("restock quantity must be greater than zero")
	}
	if req.Quantity > types.MaxQuantity {
		return nil, quantityOutOfRange(1)
	}

	var movement stock.Movement
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ctx, span := tracer.Start(ctx, "consumption.restock", trace.WithAttributes(
			attribute.String("item.kind", string(req.Kind)),
			attribute.String("item.id", req.ItemID.String()),
		))
		defer span.End()

		movement = stock.NewMovement(id.New(), stock.RecorderRestock, 1, req.Kind, req.ItemID, stock.RecordTypeReceipt, req.Quantity)

		switch req.Kind {
		case stock.ItemIngredient:
			locked, err := e.ingredients.LockForUpdate(ctx, []id.ID{req.ItemID})
			if err != nil {
				return fmt.Errorf("lock ingredient: %w", err)
			}
			ing, ok := locked[req.ItemID]
			if !ok {
				return apperror.NewNotFound("ingredient", req.ItemID)
			}
			if ing.Stock, err = ing.Stock.Add(req.Quantity); err != nil {
				return quantityOutOfRange(1)
			}
			movement.StockAfter = ing.Stock
			if err := e.ingredients.SetStock(ctx, ing.ID, ing.Stock); err != nil {
				return fmt.Errorf("update ingredient: %w", err)
			}

		case stock.ItemProduct:
			locked, err := e.products.LockForUpdate(ctx, []id.ID{req.ItemID})
			if err != nil {
				return fmt.Errorf("lock product: %w", err)
			}
			p, ok := locked[req.ItemID]
			if !ok {
				return apperror.NewNotFound("product", req.ItemID)
			}
			if p.Stock, err = p.Stock.Add(req.Quantity); err != nil {
				return quantityOutOfRange(1)
			}
			movement.StockAfter = p.Stock
			if err := e.products.SetCounters(ctx, p.ID, p.Stock, p.SoldCount); err != nil {
				return fmt.Errorf("update product: %w", err)
			}

		default:
			return apperror.NewValidation(fmt.Sprintf("unknown item kind %q", req.Kind))
		}

		return e.register.RecordMovements(ctx, []stock.Movement{movement})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock restocked",
		"item_kind", req.Kind,
		"item_id", req.ItemID,
		"quantity", req.Quantity.String(),
		"stock_after", movement.StockAfter.String(),
	)
	return &movement, nil
}

// Reverse returns to stock whatever the source transaction still has outstanding according to
// its journal, and undoes its sold-count increments. Receipts are journaled under the same
// recorder id, so a second Reverse finds nothing outstanding and restores nothing.
func (e *Engine) Reverse(ctx context.Context, req ReverseRequest) ([]stock.Movement, error) {
	if id.IsNil(req.SourceRecorderID) {
		return nil, apperror.NewValidation("source recorder id is required")
	}

	var movements []stock.Movement
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ctx, span := tracer.Start(ctx, "consumption.reverse", trace.WithAttributes(
			attribute.String("recorder.id", req.SourceRecorderID.String()),
		))
		defer span.End()

		journal, err := e.register.GetByRecorder(ctx, req.SourceRecorderID)
		if err != nil {
			return fmt.Errorf("load movements: %w", err)
		}

		outstanding := stock.NetByItem(journal)
		lineOf := make(map[stock.ItemKey]int)
		productOf := make(map[stock.ItemKey]*id.ID)
		for _, m := range journal {
			k := stock.ItemKey{Kind: m.ItemKind, ID: m.ItemID}
			if _, seen := lineOf[k]; !seen {
				lineOf[k] = m.LineNo
				productOf[k] = m.ProductID
			}
		}

		var ingredientIDs, productIDs []id.ID
		for k, net := range outstanding {
			if !net.IsNegative() {
				continue
			}
			if k.Kind == stock.ItemIngredient {
				ingredientIDs = append(ingredientIDs, k.ID)
			} else {
				productIDs = append(productIDs, k.ID)
			}
		}
		for pid, qty := range req.Sales {
			if qty.IsPositive() {
				productIDs = append(productIDs, pid)
			}
		}
		productIDs = sortedUnique(productIDs)
		ingredientIDs = sortedUnique(ingredientIDs)

		products := map[id.ID]*catalog.Product{}
		if len(productIDs) > 0 {
			if products, err = e.products.LockForUpdate(ctx, productIDs); err != nil {
				return fmt.Errorf("lock products: %w", err)
			}
		}
		ingredients := map[id.ID]*catalog.Ingredient{}
		if len(ingredientIDs) > 0 {
			if ingredients, err = e.ingredients.LockForUpdate(ctx, ingredientIDs); err != nil {
				return fmt.Errorf("lock ingredients: %w", err)
			}
		}

		for _, ingID := range ingredientIDs {
			ing, ok := ingredients[ingID]
			if !ok {
				// ingredient was removed from the catalog; nothing to restore into
				continue
			}
			k := stock.ItemKey{Kind: stock.ItemIngredient, ID: ingID}
			qty := outstanding[k].Neg()
			if ing.Stock, err = ing.Stock.Add(qty); err != nil {
				return quantityOutOfRange(lineOf[k])
			}
			if err := e.ingredients.SetStock(ctx, ingID, ing.Stock); err != nil {
				return fmt.Errorf("restore ingredient %s: %w", ingID, err)
			}
			m := stock.NewMovement(req.SourceRecorderID, req.RecorderType, lineOf[k], k.Kind, k.ID, stock.RecordTypeReceipt, qty)
			m.ProductID = productOf[k]
			m.StockAfter = ing.Stock
			movements = append(movements, m)
		}

		for _, pid := range productIDs {
			p, ok := products[pid]
			if !ok {
				continue
			}
			k := stock.ItemKey{Kind: stock.ItemProduct, ID: pid}
			if net := outstanding[k]; net.IsNegative() {
				if p.Stock, err = p.Stock.Add(net.Neg()); err != nil {
					return quantityOutOfRange(lineOf[k])
				}
				m := stock.NewMovement(req.SourceRecorderID, req.RecorderType, lineOf[k], k.Kind, k.ID, stock.RecordTypeReceipt, net.Neg())
				m.ProductID = &p.ID
				m.StockAfter = p.Stock
				movements = append(movements, m)
			}
			if sold := req.Sales[pid]; sold.IsPositive() {
				p.SoldCount -= sold
				if p.SoldCount.IsNegative() {
					p.SoldCount = 0
				}
			}
			if err := e.products.SetCounters(ctx, pid, p.Stock, p.SoldCount); err != nil {
				return fmt.Errorf("restore product %s: %w", pid, err)
			}
		}

		return e.register.RecordMovements(ctx, movements)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock reversed",
		"recorder_id", req.SourceRecorderID,
		"recorder_type", req.RecorderType,
		"movements", len(movements),
	)
	return movements, nil
}

func sortedUnique(ids []id.ID) []id.ID {
	seen := make(map[id.ID]struct{}, len(ids))
	out := make([]id.ID, 0, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id.Less(out[i], out[j]) })
	return out
}

func sortedKeys(set map[id.ID]struct{}) []id.ID {
	out := make([]id.ID, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return id.Less(out[i], out[j]) })
	return out
}
