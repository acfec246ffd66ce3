package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// StockHandler serves the stock movement register.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a stock register handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// GetByRecorder handles GET /stock/movements?recorderId=
// It lists every movement written by one order, ticket, waste log or restock.
func (h *StockHandler) GetByRecorder(c *gin.Context) {
	var q dto.RecorderMovementsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	recorderID, err := id.Parse(q.RecorderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid recorderId").WithDetail("field", "recorderId"))
		return
	}

	movements, err := h.service.GetByRecorder(c.Request.Context(), recorderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(movements, dto.PageQuery{}))
}

// GetIngredientHistory handles GET /stock/ingredients/:id/movements
func (h *StockHandler) GetIngredientHistory(c *gin.Context) {
	ingredientID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}

	movements, err := h.service.GetHistory(c.Request.Context(), stock.ItemIngredient, ingredientID, q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(movements, q.PageQuery))
}
