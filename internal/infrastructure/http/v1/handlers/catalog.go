package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves ingredients and products.
type CatalogHandler struct {
	*BaseHandler
	service *catalog.Service
	engine  *consumption.Engine
}

// NewCatalogHandler creates a catalog handler. Restocks go through engine.
func NewCatalogHandler(base *BaseHandler, service *catalog.Service, engine *consumption.Engine) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, service: service, engine: engine}
}

// CreateIngredient handles POST /ingredients
func (h *CatalogHandler) CreateIngredient(c *gin.Context) {
	var req dto.CreateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing, err := h.service.CreateIngredient(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ing)
}

// GetIngredient handles GET /ingredients/:id
func (h *CatalogHandler) GetIngredient(c *gin.Context) {
	ingredientID, ok := h.ParamID(c)
	if !ok {
		return
	}

	ing, err := h.service.GetIngredient(c.Request.Context(), ingredientID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ing)
}

// ListIngredients handles GET /ingredients
func (h *CatalogHandler) ListIngredients(c *gin.Context) {
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	list, err := h.service.ListIngredients(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, q.PageQuery))
}

// ListLowStock handles GET /ingredients/low-stock
func (h *CatalogHandler) ListLowStock(c *gin.Context) {
	list, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, dto.PageQuery{}))
}

// UpdateIngredient handles PUT /ingredients/:id
func (h *CatalogHandler) UpdateIngredient(c *gin.Context) {
	ingredientID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateIngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing, err := h.service.UpdateIngredient(c.Request.Context(), ingredientID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ing)
}

// RestockIngredient handles POST /ingredients/:id/restock
func (h *CatalogHandler) RestockIngredient(c *gin.Context) {
	h.restock(c, stock.ItemIngredient)
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.CreateProduct(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	list, err := h.service.ListProducts(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, q.PageQuery))
}

// UpdateProduct handles PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateProduct(c.Request.Context(), productID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// RestockProduct handles POST /products/:id/restock
func (h *CatalogHandler) RestockProduct(c *gin.Context) {
	h.restock(c, stock.ItemProduct)
}

func (h *CatalogHandler) restock(c *gin.Context, kind stock.ItemKind) {
	itemID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.RestockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := h.engine.Restock(c.Request.Context(), consumption.RestockRequest{
		Kind:     kind,
		ItemID:   itemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, movement)
}
