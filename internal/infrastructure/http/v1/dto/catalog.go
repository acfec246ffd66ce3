package dto

import (
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
)

// --- Ingredients ---

// CreateIngredientRequest creates an ingredient with its opening balance.
type CreateIngredientRequest struct {
	Name        string         `json:"name" binding:"required,max=200"`
	Unit        string         `json:"unit" binding:"required,max=20"`
	Stock       types.Quantity `json:"stock" binding:"gte=0,lte=10000000000000"`
	CostPerUnit types.Money    `json:"costPerUnit"`
	MinStock    types.Quantity `json:"minStock" binding:"gte=0,lte=10000000000000"`
}

func (r *CreateIngredientRequest) ToInput() catalog.CreateIngredientInput {
	return catalog.CreateIngredientInput{
		Name:         r.Name,
		Unit:         r.Unit,
		OpeningStock: r.Stock,
		CostPerUnit:  r.CostPerUnit,
		MinStock:     r.MinStock,
	}
}

// UpdateIngredientRequest edits descriptive fields. Stock is not editable.
type UpdateIngredientRequest struct {
	Name        *string         `json:"name" binding:"omitempty,max=200"`
	Unit        *string         `json:"unit" binding:"omitempty,max=20"`
	CostPerUnit *types.Money    `json:"costPerUnit"`
	MinStock    *types.Quantity `json:"minStock"`
}

func (r *UpdateIngredientRequest) ToInput() catalog.UpdateIngredientInput {
	return catalog.UpdateIngredientInput{
		Name:        r.Name,
		Unit:        r.Unit,
		CostPerUnit: r.CostPerUnit,
		MinStock:    r.MinStock,
	}
}

// RestockRequest adds received goods to stock.
type RestockRequest struct {
	Quantity types.Quantity `json:"quantity" binding:"required,gt=0,lte=10000000000000"`
}

// CatalogListQuery filters ingredient and product lists.
type CatalogListQuery struct {
	PageQuery
	Search     string `form:"search"`
	Category   string `form:"category"`
	ActiveOnly bool   `form:"activeOnly"`
}

func (q *CatalogListQuery) ToFilter() catalog.ListFilter {
	q.Normalize()
	return catalog.ListFilter{
		Search:     q.Search,
		Category:   q.Category,
		ActiveOnly: q.ActiveOnly,
		Limit:      q.Limit,
		Offset:     q.Offset,
	}
}

// --- Products ---

// CreateProductRequest creates a product. Policy and serving fields default from the
// configured category and name lists when omitted.
type CreateProductRequest struct {
	Name         string         `json:"name" binding:"required,max=200"`
	Category     string         `json:"category" binding:"max=100"`
	Price        types.Money    `json:"price"`
	Stock        types.Quantity `json:"stock" binding:"gte=0,lte=10000000000000"`
	Policy       *string        `json:"policy" binding:"omitempty,oneof=recipe_required unit_tracked"`
	Temperature  *string        `json:"temperature" binding:"omitempty,oneof=none hot cold"`
	ReusableWare *bool          `json:"reusableWare"`
	Active       *bool          `json:"active"`
}

func (r *CreateProductRequest) ToInput() catalog.CreateProductInput {
	return catalog.CreateProductInput{
		Name:         r.Name,
		Category:     r.Category,
		Price:        r.Price,
		OpeningStock: r.Stock,
		Policy:       policyPtr(r.Policy),
		Temperature:  temperaturePtr(r.Temperature),
		ReusableWare: r.ReusableWare,
		Active:       r.Active,
	}
}

// UpdateProductRequest edits a product. Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name         *string      `json:"name" binding:"omitempty,max=200"`
	Category     *string      `json:"category" binding:"omitempty,max=100"`
	Price        *types.Money `json:"price"`
	Policy       *string      `json:"policy" binding:"omitempty,oneof=recipe_required unit_tracked"`
	Temperature  *string      `json:"temperature" binding:"omitempty,oneof=none hot cold"`
	ReusableWare *bool        `json:"reusableWare"`
	Active       *bool        `json:"active"`
}

func (r *UpdateProductRequest) ToInput() catalog.UpdateProductInput {
	return catalog.UpdateProductInput{
		Name:         r.Name,
		Category:     r.Category,
		Price:        r.Price,
		Policy:       policyPtr(r.Policy),
		Temperature:  temperaturePtr(r.Temperature),
		ReusableWare: r.ReusableWare,
		Active:       r.Active,
	}
}

func policyPtr(s *string) *catalog.CategoryPolicy {
	if s == nil {
		return nil
	}
	p := catalog.CategoryPolicy(*s)
	return &p
}

func temperaturePtr(s *string) *catalog.Temperature {
	if s == nil {
		return nil
	}
	t := catalog.Temperature(*s)
	return &t
}
