package memory

import (
	"context"
	"sort"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/orders"
	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/domain/waste"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	store *Store
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository over store.
func NewOrderRepo(store *Store) *OrderRepo {
	return &OrderRepo{store: store}
}

func cloneOrder(o orders.Order) *orders.Order {
	o.Items = append([]orders.Item(nil), o.Items...)
	return &o
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	return r.store.do(ctx, func(st *state) error {
		for _, other := range st.orders {
			if other.Number == o.Number {
				return apperror.NewDuplicate("order", "number", o.Number)
			}
		}
		st.orders[o.ID] = *cloneOrder(*o)
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	var out *orders.Order
	err := r.store.do(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return apperror.NewNotFound("order", orderID)
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, o *orders.Order) error {
	return r.store.do(ctx, func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return apperror.NewNotFound("order", o.ID)
		}
		cur.Status = o.Status
		cur.Restocked = o.Restocked
		cur.CancelledAt = o.CancelledAt
		cur.UpdatedAt = o.UpdatedAt
		st.orders[o.ID] = cur
		return nil
	})
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) ([]*orders.Order, error) {
	var out []*orders.Order
	err := r.store.do(ctx, func(st *state) error {
		for _, o := range st.orders {
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
			if filter.StaffID != "" && o.StaffID != filter.StaffID {
				continue
			}
			o.Items = nil
			out = append(out, &o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Number > out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, filter.Limit, filter.Offset), err
}

// StaffConsumptionRepo implements staffmeal.Repository.
type StaffConsumptionRepo struct {
	store *Store
}

var _ staffmeal.Repository = (*StaffConsumptionRepo)(nil)

// NewStaffConsumptionRepo creates a staff consumption repository over store.
func NewStaffConsumptionRepo(store *Store) *StaffConsumptionRepo {
	return &StaffConsumptionRepo{store: store}
}

func (r *StaffConsumptionRepo) Create(ctx context.Context, c *staffmeal.Consumption) error {
	return r.store.do(ctx, func(st *state) error {
		cp := *c
		cp.Items = append([]orders.Item(nil), c.Items...)
		st.staff[c.ID] = cp
		return nil
	})
}

func (r *StaffConsumptionRepo) GetByID(ctx context.Context, consumptionID id.ID) (*staffmeal.Consumption, error) {
	var out *staffmeal.Consumption
	err := r.store.do(ctx, func(st *state) error {
		c, ok := st.staff[consumptionID]
		if !ok {
			return apperror.NewNotFound("staff consumption", consumptionID)
		}
		c.Items = append([]orders.Item(nil), c.Items...)
		out = &c
		return nil
	})
	return out, err
}

func (r *StaffConsumptionRepo) List(ctx context.Context, filter staffmeal.ListFilter) ([]*staffmeal.Consumption, error) {
	var out []*staffmeal.Consumption
	err := r.store.do(ctx, func(st *state) error {
		for _, c := range st.staff {
			if filter.StaffID != "" && c.StaffID != filter.StaffID {
				continue
			}
			c.Items = nil
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), err
}

// WasteRepo implements waste.Repository.
type WasteRepo struct {
	store *Store
}

var _ waste.Repository = (*WasteRepo)(nil)

// NewWasteRepo creates a waste repository over store.
func NewWasteRepo(store *Store) *WasteRepo {
	return &WasteRepo{store: store}
}

func (r *WasteRepo) Create(ctx context.Context, l *waste.Log) error {
	return r.store.do(ctx, func(st *state) error {
		st.waste[l.ID] = *l
		return nil
	})
}

func (r *WasteRepo) GetByID(ctx context.Context, wasteID id.ID) (*waste.Log, error) {
	var out *waste.Log
	err := r.store.do(ctx, func(st *state) error {
		l, ok := st.waste[wasteID]
		if !ok {
			return apperror.NewNotFound("waste", wasteID)
		}
		out = &l
		return nil
	})
	return out, err
}

func (r *WasteRepo) List(ctx context.Context, filter waste.ListFilter) ([]*waste.Log, error) {
	var out []*waste.Log
	err := r.store.do(ctx, func(st *state) error {
		for _, l := range st.waste {
			if filter.TargetKind != nil && l.TargetKind != *filter.TargetKind {
				continue
			}
			if filter.TargetID != nil && l.TargetID != *filter.TargetID {
				continue
			}
			if filter.FromDate != nil && l.CreatedAt.Before(*filter.FromDate) {
				continue
			}
			if filter.ToDate != nil && l.CreatedAt.After(*filter.ToDate) {
				continue
			}
			out = append(out, &l)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, filter.Limit, filter.Offset), err
}

func (r *WasteRepo) CreateExpense(ctx context.Context, e *waste.Expense) error {
	return r.store.do(ctx, func(st *state) error {
		st.expenses[e.ID] = *e
		return nil
	})
}

// Expenses returns every booked expense. Used by tests and the seed report.
func (r *WasteRepo) Expenses(ctx context.Context) ([]waste.Expense, error) {
	var out []waste.Expense
	err := r.store.do(ctx, func(st *state) error {
		for _, e := range st.expenses {
			out = append(out, e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}
