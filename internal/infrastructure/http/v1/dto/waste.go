package dto

import (
	"time"

	"brewpos/internal/core/types"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/domain/waste"
)

// LogWasteRequest writes off an ingredient or a product. Exactly one of productId and
// ingredientId is set. Unit defaults to the ingredient's stock unit.
type LogWasteRequest struct {
	ProductID    *string        `json:"productId" binding:"omitempty,uuid"`
	IngredientID *string        `json:"ingredientId" binding:"omitempty,uuid"`
	Size         string         `json:"size" binding:"size"`
	Quantity     types.Quantity `json:"quantity" binding:"required,gt=0,lte=10000000000000"`
	Unit         string         `json:"unit" binding:"max=20"`
	Reason       string         `json:"reason" binding:"required,max=500"`
	StaffID      string         `json:"staffId" binding:"max=100"`
}

// ToInput converts the request. staffID is the X-Staff-ID header, used when the body has none.
func (r *LogWasteRequest) ToInput(staffID string) (waste.Input, error) {
	productID, err := parseOptionalID("productId", r.ProductID)
	if err != nil {
		return waste.Input{}, err
	}
	ingredientID, err := parseOptionalID("ingredientId", r.IngredientID)
	if err != nil {
		return waste.Input{}, err
	}
	if r.StaffID != "" {
		staffID = r.StaffID
	}
	return waste.Input{
		ProductID:    productID,
		IngredientID: ingredientID,
		Size:         r.Size,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		Reason:       r.Reason,
		StaffID:      staffID,
	}, nil
}

// WasteListQuery filters waste logs.
type WasteListQuery struct {
	PageQuery
	TargetKind string     `form:"targetKind" binding:"omitempty,oneof=ingredient product"`
	TargetID   string     `form:"targetId" binding:"omitempty,uuid"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
}

func (q *WasteListQuery) ToFilter() (waste.ListFilter, error) {
	q.Normalize()
	filter := waste.ListFilter{FromDate: q.From, ToDate: q.To, Limit: q.Limit, Offset: q.Offset}
	if q.TargetKind != "" {
		kind := stock.ItemKind(q.TargetKind)
		filter.TargetKind = &kind
	}
	if q.TargetID != "" {
		targetID, err := parseID("targetId", q.TargetID)
		if err != nil {
			return filter, err
		}
		filter.TargetID = &targetID
	}
	return filter, nil
}
