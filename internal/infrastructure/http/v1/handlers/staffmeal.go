package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// StaffConsumptionHandler serves staff self-consumption tickets.
type StaffConsumptionHandler struct {
	*BaseHandler
	service *staffmeal.Service
}

// NewStaffConsumptionHandler creates a staff consumption handler.
func NewStaffConsumptionHandler(base *BaseHandler, service *staffmeal.Service) *StaffConsumptionHandler {
	return &StaffConsumptionHandler{BaseHandler: base, service: service}
}

// Record handles POST /staff-consumptions
func (h *StaffConsumptionHandler) Record(c *gin.Context) {
	var req dto.RecordStaffConsumptionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	ticket, err := h.service.Record(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ticket)
}

// Get handles GET /staff-consumptions/:id
func (h *StaffConsumptionHandler) Get(c *gin.Context) {
	ticketID, ok := h.ParamID(c)
	if !ok {
		return
	}

	ticket, err := h.service.Get(c.Request.Context(), ticketID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ticket)
}

// List handles GET /staff-consumptions
func (h *StaffConsumptionHandler) List(c *gin.Context) {
	var q dto.StaffConsumptionListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	list, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, q.PageQuery))
}

// Cost handles GET /staff-consumptions/:id/cost
func (h *StaffConsumptionHandler) Cost(c *gin.Context) {
	ticketID, ok := h.ParamID(c)
	if !ok {
		return
	}

	report, err := h.service.Cost(c.Request.Context(), ticketID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
