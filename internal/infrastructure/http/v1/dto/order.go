package dto

import (
	"brewpos/internal/core/types"
	"brewpos/internal/domain/orders"
)

// OrderItemRequest is one line of an order or staff ticket.
type OrderItemRequest struct {
	ProductID string         `json:"productId" binding:"required,uuid"`
	Size      string         `json:"size" binding:"size"`
	Quantity  types.Quantity `json:"quantity" binding:"required,gt=0,lte=10000000000000"`
	// UnitPrice overrides the catalog price.
	UnitPrice    *types.Money `json:"unitPrice"`
	ReusableWare bool         `json:"reusableWare"`
}

func toItemInputs(reqs []OrderItemRequest) ([]orders.ItemInput, error) {
	items := make([]orders.ItemInput, 0, len(reqs))
	for _, r := range reqs {
		productID, err := parseID("productId", r.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, orders.ItemInput{
			ProductID:    productID,
			Size:         r.Size,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			ReusableWare: r.ReusableWare,
		})
	}
	return items, nil
}

// PlaceOrderRequest places a customer order.
type PlaceOrderRequest struct {
	CustomerName  string             `json:"customerName" binding:"max=200"`
	StaffID       string             `json:"staffId" binding:"max=100"`
	Note          string             `json:"note" binding:"max=1000"`
	PaymentMethod string             `json:"paymentMethod" binding:"max=50"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ToInput converts the request. staffID is the X-Staff-ID header, used when the body has none.
func (r *PlaceOrderRequest) ToInput(staffID string) (orders.PlaceInput, error) {
	items, err := toItemInputs(r.Items)
	if err != nil {
		return orders.PlaceInput{}, err
	}
	if r.StaffID != "" {
		staffID = r.StaffID
	}
	return orders.PlaceInput{
		CustomerName:  r.CustomerName,
		StaffID:       staffID,
		Note:          r.Note,
		PaymentMethod: r.PaymentMethod,
		Items:         items,
	}, nil
}

// AdvanceStatusRequest moves an order to its next status.
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListQuery filters order lists.
type OrderListQuery struct {
	PageQuery
	Status  string `form:"status"`
	StaffID string `form:"staffId"`
}

func (q *OrderListQuery) ToFilter() (orders.ListFilter, error) {
	q.Normalize()
	filter := orders.ListFilter{StaffID: q.StaffID, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, err := orders.ParseStatus(q.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &st
	}
	return filter, nil
}
