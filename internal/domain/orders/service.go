package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brewpos/internal/core/id"
	"brewpos/internal/core/numerator"
	"brewpos/internal/core/tx"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/costing"
	"brewpos/internal/domain/registers/stock"
	"brewpos/pkg/logger"
)

// NumberPrefix prefixes order numbers (ORD-2026-00001).
const NumberPrefix = "ORD"

// Service places, progresses and cancels orders.
type Service struct {
	txManager tx.Manager
	repo      Repository
	engine    *consumption.Engine
	costs     *costing.Evaluator
	numbers   numerator.Generator
	audit     *audit.Recorder

	// cancelRestock returns a cancelled order's consumption to stock.
	cancelRestock bool
}

// Options configures the service.
type Options struct {
	CancelRestock bool
}

// NewService creates an order service.
func NewService(
	txManager tx.Manager,
	repo Repository,
	engine *consumption.Engine,
	costs *costing.Evaluator,
	numbers numerator.Generator,
	rec *audit.Recorder,
	opts Options,
) *Service {
	return &Service{
		txManager:     txManager,
		repo:          repo,
		engine:        engine,
		costs:         costs,
		numbers:       numbers,
		audit:         rec,
		cancelRestock: opts.CancelRestock,
	}
}

// PlaceInput is a new order request.
type PlaceInput struct {
	CustomerName  string
	StaffID       string
	Note          string
	PaymentMethod string
	Items         []ItemInput
}

// Place validates the whole order against stock and, if every line can be served,
// consumes it and stores the order as PENDING, all in one transaction.
func (s *Service) Place(ctx context.Context, in PlaceInput) (*Order, error) {
	lines, err := ConsumptionLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &Order{
		ID:            id.New(),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		StaffID:       strings.TrimSpace(in.StaffID),
		Note:          strings.TrimSpace(in.Note),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	number, err := s.numbers.Next(ctx, numerator.DefaultConfig(NumberPrefix), now)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}
	order.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		res, err := s.engine.Consume(ctx, consumption.Request{
			RecorderID:    order.ID,
			RecorderType:  stock.RecorderOrder,
			Lines:         lines,
			ServeInCups:   true,
			CountSales:    true,
			RequireActive: true,
		})
		if err != nil {
			return err
		}

		order.Items, err = ItemsFromResult(order.ID, in.Items, res, CatalogPrice)
		if err != nil {
			return err
		}
		order.Subtotal, order.IngredientCost = Totals(order.Items)

		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "order", order.ID, audit.ActionCreate, map[string]any{
		"number":   order.Number,
		"items":    len(order.Items),
		"subtotal": order.Subtotal.String(),
	})
	logger.Info(ctx, "order placed",
		"order_id", order.ID,
		"number", order.Number,
		"items", len(order.Items),
		"subtotal", order.Subtotal.String(),
		"ingredient_cost", order.IngredientCost.String(),
	)
	return order, nil
}

// Get returns an order with items.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List returns orders, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// AdvanceStatus moves the order one step forward, or cancels it when to is CANCELLED.
func (s *Service) AdvanceStatus(ctx context.Context, orderID id.ID, to Status) (*Order, error) {
	if to == StatusCancelled {
		return s.Cancel(ctx, orderID)
	}

	var order *Order
	var from Status
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.Advance(to); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "order", order.ID, audit.ActionStatus, map[string]any{
		"from": from, "to": order.Status,
	})
	logger.Info(ctx, "order status changed", "order_id", order.ID, "from", from, "to", order.Status)
	return order, nil
}

// Cancel cancels a PENDING order. With restock enabled the order's recorded consumption
// is returned to stock in the same transaction as the status change.
func (s *Service) Cancel(ctx context.Context, orderID id.ID) (*Order, error) {
	var order *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := order.Cancel(); err != nil {
			return err
		}

		if s.cancelRestock {
			if _, err := s.engine.Reverse(ctx, consumption.ReverseRequest{
				SourceRecorderID: order.ID,
				RecorderType:     stock.RecorderOrderCancel,
				Sales:            Sales(order.Items),
			}); err != nil {
				return fmt.Errorf("restock cancelled order: %w", err)
			}
			order.Restocked = true
		}

		return s.repo.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "order", order.ID, audit.ActionCancel, map[string]any{
		"number": order.Number, "restocked": order.Restocked,
	})
	logger.Info(ctx, "order cancelled", "order_id", order.ID, "number", order.Number, "restocked", order.Restocked)
	return order, nil
}

// Cost evaluates the order against current recipes and ingredient costs.
func (s *Service) Cost(ctx context.Context, orderID id.ID) (*costing.Report, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.costs.Evaluate(ctx, CostLines(order.Items))
}
