package staffmeal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/numerator"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/costing"
	"brewpos/internal/domain/orders"
	"brewpos/internal/domain/registers/stock"
	"brewpos/pkg/logger"
)

// NumberPrefix prefixes ticket numbers (STF-2026-00001).
const NumberPrefix = "STF"

// Service records staff consumption.
type Service struct {
	txManager tx.Manager
	repo      Repository
	engine    *consumption.Engine
	costs     *costing.Evaluator
	numbers   numerator.Generator
	audit     *audit.Recorder

	// discountRate is the share of the catalog price waived for staff; 1 means free.
	discountRate decimal.Decimal
}

// NewService creates a staff consumption service. discountRate is clamped to [0, 1].
func NewService(
	txManager tx.Manager,
	repo Repository,
	engine *consumption.Engine,
	costs *costing.Evaluator,
	numbers numerator.Generator,
	rec *audit.Recorder,
	discountRate float64,
) *Service {
	rate := decimal.NewFromFloat(discountRate)
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = decimal.NewFromInt(1)
	}
	return &Service{
		txManager:    txManager,
		repo:         repo,
		engine:       engine,
		costs:        costs,
		numbers:      numbers,
		audit:        rec,
		discountRate: rate,
	}
}

// RecordInput is a new staff consumption ticket.
type RecordInput struct {
	StaffID       string
	PaymentMethod string
	Note          string
	Items         []orders.ItemInput
}

// Record consumes the ticket's items exactly like an order and books it as shrink.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Consumption, error) {
	staffID := strings.TrimSpace(in.StaffID)
	if staffID == "" {
		return nil, apperror.NewValidation("staff id is required").WithDetail("field", "staffId")
	}

	lines, err := orders.ConsumptionLines(in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &Consumption{
		ID:            id.New(),
		StaffID:       staffID,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		Category:      AccountingCategory,
		Note:          strings.TrimSpace(in.Note),
		CreatedAt:     now,
	}

	number, err := s.numbers.Next(ctx, numerator.DefaultConfig(NumberPrefix), now)
	if err != nil {
		return nil, fmt.Errorf("generate ticket number: %w", err)
	}
	c.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		res, err := s.engine.Consume(ctx, consumption.Request{
			RecorderID:    c.ID,
			RecorderType:  stock.RecorderStaffConsumption,
			Lines:         lines,
			ServeInCups:   true,
			CountSales:    true,
			RequireActive: true,
		})
		if err != nil {
			return err
		}

		c.Items, err = orders.ItemsFromResult(c.ID, in.Items, res, s.StaffPrice)
		if err != nil {
			return err
		}
		c.Total, c.IngredientCost = orders.Totals(c.Items)

		if err := s.repo.Create(ctx, c); err != nil {
			return fmt.Errorf("create staff consumption: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "staff_consumption", c.ID, audit.ActionConsume, map[string]any{
		"number":          c.Number,
		"staff_id":        c.StaffID,
		"items":           len(c.Items),
		"ingredient_cost": c.IngredientCost.String(),
	})
	logger.Info(ctx, "staff consumption recorded",
		"consumption_id", c.ID,
		"number", c.Number,
		"staff_id", c.StaffID,
		"total", c.Total.String(),
		"ingredient_cost", c.IngredientCost.String(),
	)
	return c, nil
}

// StaffPrice is the explicit unit price when given, else the catalog price less the staff discount.
func (s *Service) StaffPrice(p *catalog.Product, in orders.ItemInput) types.Money {
	if in.UnitPrice != nil {
		return *in.UnitPrice
	}
	return p.Price.Mul(decimal.NewFromInt(1).Sub(s.discountRate)).Round(2)
}

// Get returns a ticket with items.
func (s *Service) Get(ctx context.Context, consumptionID id.ID) (*Consumption, error) {
	return s.repo.GetByID(ctx, consumptionID)
}

// List returns tickets, optionally for one staff member.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Consumption, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Cost evaluates the ticket against current recipes. Revenue is what staff paid.
func (s *Service) Cost(ctx context.Context, consumptionID id.ID) (*costing.Report, error) {
	c, err := s.repo.GetByID(ctx, consumptionID)
	if err != nil {
		return nil, err
	}
	return s.costs.Evaluate(ctx, orders.CostLines(c.Items))
}
