package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/domain/waste"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// WasteHandler serves waste write-offs.
type WasteHandler struct {
	*BaseHandler
	service *waste.Service
}

// NewWasteHandler creates a waste handler.
func NewWasteHandler(base *BaseHandler, service *waste.Service) *WasteHandler {
	return &WasteHandler{BaseHandler: base, service: service}
}

// Log handles POST /waste
func (h *WasteHandler) Log(c *gin.Context) {
	var req dto.LogWasteRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput(h.StaffID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	l, err := h.service.Log(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, l)
}

// Get handles GET /waste/:id
func (h *WasteHandler) Get(c *gin.Context) {
	wasteID, ok := h.ParamID(c)
	if !ok {
		return
	}

	l, err := h.service.Get(c.Request.Context(), wasteID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, l)
}

// List handles GET /waste
func (h *WasteHandler) List(c *gin.Context) {
	var q dto.WasteListQuery
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
