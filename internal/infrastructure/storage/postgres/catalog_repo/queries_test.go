package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/catalog"
)

func TestByIDsQuery_LocksInIDOrder(t *testing.T) {
	repo := NewIngredientRepo(nil)
	a, b := id.New(), id.New()

	sql, args, err := repo.byIDsQuery([]id.ID{a, b}, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM ingredients WHERE id IN ($1,$2) ORDER BY id FOR UPDATE")
	assert.Equal(t, []any{a, b}, args)

	sql, _, err = repo.byIDsQuery([]id.ID{a}, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "FOR UPDATE")
}

func TestIngredientRepo_LowStockQuery(t *testing.T) {
	sql, args, err := NewIngredientRepo(nil).lowStockQuery().ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE min_stock > 0 AND stock <= min_stock ORDER BY name")
	assert.Empty(t, args)
}

func TestProductRepo_ListQuery(t *testing.T) {
	repo := NewProductRepo(nil)

	tests := []struct {
		name     string
		filter   catalog.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "defaults",
			filter:   catalog.ListFilter{},
			wantSQL:  "FROM products ORDER BY name, id LIMIT 100",
			wantArgs: nil,
		},
		{
			name:     "category, active and search",
			filter:   catalog.ListFilter{Category: "Coffee", ActiveOnly: true, Search: "lat", Limit: 5000, Offset: 20},
			wantSQL:  "FROM products WHERE lower(category) = lower($1) AND active = $2 AND name ILIKE $3 ORDER BY name, id LIMIT 1000 OFFSET 20",
			wantArgs: []any{"Coffee", true, "%lat%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, tt.wantSQL)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRecipeRepo_DeleteQueryMatchesGenericBySizeNull(t *testing.T) {
	repo := NewRecipeRepo(nil)
	productID := id.New()

	sql, args, err := repo.deleteQuery(productID, catalog.SizeNone).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM recipes WHERE product_id = $1 AND size IS NULL", sql)
	assert.Len(t, args, 1)

	sql, args, err = repo.deleteQuery(productID, catalog.SizeLarge).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM recipes WHERE product_id = $1 AND size = $2", sql)
	assert.Equal(t, "L", args[1])
}

func TestRecipeRepo_RecipesQueryOrdersGenericFirst(t *testing.T) {
	sql, _, err := NewRecipeRepo(nil).recipesQuery([]id.ID{id.New()}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY product_id, CASE size WHEN 'S' THEN 1")
}
