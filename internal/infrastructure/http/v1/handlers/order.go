package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/domain/orders"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves customer orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates an order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Place handles POST /orders
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.Place(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}

	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, q.PageQuery))
}

// AdvanceStatus handles POST /orders/:id/status
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.AdvanceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	to, err := orders.ParseStatus(req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	order, err := h.service.AdvanceStatus(c.Request.Context(), orderID, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Cost handles GET /orders/:id/cost
func (h *OrderHandler) Cost(c *gin.Context) {
	orderID, ok := h.ParamID(c)
	if !ok {
		return
	}

	report, err := h.service.Cost(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
