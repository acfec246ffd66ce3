// Package memory is an in-process store implementing every repository.
// Transactions are serialized by one mutex; a rollback restores the snapshot taken at begin.
// Used for local development (STORAGE_DRIVER=memory) and for service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"brewpos/internal/core/id"
	"brewpos/internal/core/tx"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/orders"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/domain/waste"
)

type txKey struct{}

// state is the whole dataset. Rows are stored by value; slices inside rows are never
// mutated in place, so a shallow copy of the maps is a consistent snapshot.
type state struct {
	ingredients map[id.ID]catalog.Ingredient
	products    map[id.ID]catalog.Product
	recipes     map[id.ID]recipe.Recipe
	movements   []stock.Movement
	orders      map[id.ID]orders.Order
	staff       map[id.ID]staffmeal.Consumption
	waste       map[id.ID]waste.Log
	expenses    map[id.ID]waste.Expense
	sequences   map[string]int64
}

func newState() *state {
	return &state{
		ingredients: map[id.ID]catalog.Ingredient{},
		products:    map[id.ID]catalog.Product{},
		recipes:     map[id.ID]recipe.Recipe{},
		orders:      map[id.ID]orders.Order{},
		staff:       map[id.ID]staffmeal.Consumption{},
		waste:       map[id.ID]waste.Log{},
		expenses:    map[id.ID]waste.Expense{},
		sequences:   map[string]int64{},
	}
}

func (st *state) clone() *state {
	return &state{
		ingredients: cloneMap(st.ingredients),
		products:    cloneMap(st.products),
		recipes:     cloneMap(st.recipes),
		movements:   st.movements[:len(st.movements):len(st.movements)],
		orders:      cloneMap(st.orders),
		staff:       cloneMap(st.staff),
		waste:       cloneMap(st.waste),
		expenses:    cloneMap(st.expenses),
		sequences:   cloneMap(st.sequences),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store owns the dataset and is the transaction manager for it.
type Store struct {
	mu    sync.Mutex
	state *state
}

var _ tx.ReadOnlyManager = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{state: newState()}
}

// RunInTransaction runs fn with exclusive access to the store. Nested calls join the
// outer transaction. On error or panic every write made by fn is discarded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
		if err != nil {
			s.state = snapshot
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, s))
}

// ReadOnly runs fn like RunInTransaction. Writes are not prevented.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// do runs fn against the current state, inside the caller's transaction or under the lock.
func (s *Store) do(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.state)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(name(items[i])) < strings.ToLower(name(items[j]))
	})
}
