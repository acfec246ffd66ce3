package handlers

import (
	"github.com/gin-gonic/gin"

	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/infrastructure/http/v1/dto"
)

// RecipeHandler serves product recipes.
type RecipeHandler struct {
	*BaseHandler
	service *recipe.Service
}

// NewRecipeHandler creates a recipe handler.
func NewRecipeHandler(base *BaseHandler, service *recipe.Service) *RecipeHandler {
	return &RecipeHandler{BaseHandler: base, service: service}
}

// Resolve handles GET /products/:id/recipe?size=
// It returns the recipe that a sale of that size would consume.
func (h *RecipeHandler) Resolve(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	size, ok := h.sizeQuery(c)
	if !ok {
		return
	}

	resolved, err := h.service.Resolve(c.Request.Context(), productID, size)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromResolved(resolved))
}

// List handles GET /products/:id/recipes
func (h *RecipeHandler) List(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	list, err := h.service.List(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, dto.PageQuery{}))
}

// Upsert handles PUT /products/:id/recipes
func (h *RecipeHandler) Upsert(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.UpsertRecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	items, err := req.ToItems()
	if err != nil {
		h.Error(c, err)
		return
	}

	r, err := h.service.Upsert(c.Request.Context(), productID, req.Size, items)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// Delete handles DELETE /products/:id/recipes?size=
func (h *RecipeHandler) Delete(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}
	size, ok := h.sizeQuery(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), productID, size); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *RecipeHandler) sizeQuery(c *gin.Context) (string, bool) {
	size := c.Query("size")
	if _, err := catalog.ParseSize(size); err != nil {
		h.Error(c, err)
		return "", false
	}
	return size, true
}
