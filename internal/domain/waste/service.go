package waste

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brewpos/internal/core/id"
	"brewpos/internal/core/numerator"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/registers/stock"
	"brewpos/pkg/logger"
)

// NumberPrefix prefixes waste numbers (WST-2026-00001).
const NumberPrefix = "WST"

const productUnit = "unit"

// Service logs waste.
type Service struct {
	txManager       tx.Manager
	repo            Repository
	ingredients     catalog.IngredientRepository
	engine          *consumption.Engine
	numbers         numerator.Generator
	audit           *audit.Recorder
	expenseCategory string
}

// NewService creates a waste service. Derived expenses are booked under expenseCategory.
func NewService(
	txManager tx.Manager,
	repo Repository,
	ingredients catalog.IngredientRepository,
	engine *consumption.Engine,
	numbers numerator.Generator,
	rec *audit.Recorder,
	expenseCategory string,
) *Service {
	if strings.TrimSpace(expenseCategory) == "" {
		expenseCategory = "Waste"
	}
	return &Service{
		txManager:       txManager,
		repo:            repo,
		ingredients:     ingredients,
		engine:          engine,
		numbers:         numbers,
		audit:           rec,
		expenseCategory: expenseCategory,
	}
}

// Log removes the wasted quantity from stock and records it. A product is written off
// through its recipe for the given size; sold count and cups are untouched. When the
// waste has a positive cost an expense is booked in the same transaction.
func (s *Service) Log(ctx context.Context, in Input) (*Log, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l := &Log{
		ID:        id.New(),
		Quantity:  in.Quantity,
		Unit:      strings.TrimSpace(in.Unit),
		Reason:    strings.TrimSpace(in.Reason),
		StaffID:   strings.TrimSpace(in.StaffID),
		CreatedAt: now,
	}

	var size catalog.Size
	if in.ProductID != nil {
		var err error
		if size, err = catalog.ParseSize(in.Size); err != nil {
			return nil, err
		}
		l.Size = size.Ptr()
	}

	number, err := s.numbers.Next(ctx, numerator.DefaultConfig(NumberPrefix), now)
	if err != nil {
		return nil, fmt.Errorf("generate waste number: %w", err)
	}
	l.Number = number

	var expense *Expense
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		if in.IngredientID != nil {
			err = s.consumeIngredient(ctx, l, *in.IngredientID)
		} else {
			err = s.consumeProduct(ctx, l, *in.ProductID, size)
		}
		if err != nil {
			return err
		}

		if l.Cost != nil && l.Cost.IsPositive() {
			expense = &Expense{
				ID:            id.New(),
				Category:      s.expenseCategory,
				Amount:        l.Cost.Round(2),
				Description:   fmt.Sprintf("Waste %s: %s %s %s (%s)", l.Number, l.Quantity, l.Unit, l.TargetName, l.Reason),
				SourceWasteID: &l.ID,
				Date:          now,
				CreatedAt:     now,
			}
			l.ExpenseID = &expense.ID
		}

		if err := s.repo.Create(ctx, l); err != nil {
			return fmt.Errorf("create waste log: %w", err)
		}
		if expense != nil {
			if err := s.repo.CreateExpense(ctx, expense); err != nil {
				return fmt.Errorf("create waste expense: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	changes := map[string]any{
		"number":      l.Number,
		"target_kind": l.TargetKind,
		"target_id":   l.TargetID.String(),
		"quantity":    l.StockQuantity.String(),
		"reason":      l.Reason,
	}
	if l.Cost != nil {
		changes["cost"] = l.Cost.String()
	}
	s.audit.Record(ctx, "waste", l.ID, audit.ActionWaste, changes)

	logger.Info(ctx, "waste logged",
		"waste_id", l.ID,
		"number", l.Number,
		"target_kind", l.TargetKind,
		"target", l.TargetName,
		"quantity", l.StockQuantity.String(),
		"expense", expense != nil,
	)
	return l, nil
}

func (s *Service) consumeIngredient(ctx context.Context, l *Log, ingredientID id.ID) error {
	ing, err := s.ingredients.GetByID(ctx, ingredientID)
	if err != nil {
		return err
	}

	qty, err := ConvertQuantity(l.Quantity, l.Unit, ing.Unit)
	if err != nil {
		return err
	}

	res, err := s.engine.Consume(ctx, consumption.Request{
		RecorderID:   l.ID,
		RecorderType: stock.RecorderWaste,
		Ingredients:  []consumption.IngredientLine{{IngredientID: ing.ID, Quantity: qty}},
	})
	if err != nil {
		return err
	}

	l.TargetKind = stock.ItemIngredient
	l.TargetID = ing.ID
	l.TargetName = ing.Name
	l.StockQuantity = qty
	if l.Unit == "" {
		l.Unit = ing.Unit
	}
	cost := res.Ingredients[0].Cost
	l.Cost = &cost
	return nil
}

func (s *Service) consumeProduct(ctx context.Context, l *Log, productID id.ID, size catalog.Size) error {
	res, err := s.engine.Consume(ctx, consumption.Request{
		RecorderID:   l.ID,
		RecorderType: stock.RecorderWaste,
		Lines:        []consumption.Line{{ProductID: productID, Size: size, Quantity: l.Quantity}},
	})
	if err != nil {
		return err
	}

	lr := res.Lines[0]
	l.TargetKind = stock.ItemProduct
	l.TargetID = lr.Product.ID
	l.TargetName = lr.Product.Name
	l.StockQuantity = l.Quantity
	l.Unit = productUnit
	if lr.Recipe != nil {
		cost := lr.Cost
		l.Cost = &cost
	}
	return nil
}

// Get returns one waste log.
func (s *Service) Get(ctx context.Context, wasteID id.ID) (*Log, error) {
	return s.repo.GetByID(ctx, wasteID)
}

// List returns waste logs, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Log, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Total sums the known cost of logs.
func Total(logs []*Log) types.Money {
	total := types.Zero()
	for _, l := range logs {
		if l.Cost != nil {
			total = total.Add(*l.Cost)
		}
	}
	return total
}
