package handlers

import (
	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/infrastructure/http/v1/dto"
)

// IngredientHandler handles HTTP requests for the ingredient catalog.
type IngredientHandler struct {
	*BaseHandler
	service *ingredient.Service
}

// NewIngredientHandler creates a new ingredient handler.
func NewIngredientHandler(base *BaseHandler, service *ingredient.Service) *IngredientHandler {
	return &IngredientHandler{BaseHandler: base, service: service}
}

// RegisterRoutes attaches the ingredient endpoints.
func (h *IngredientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /catalog/ingredients.
func (h *IngredientHandler) Create(c *gin.Context) {
	var req dto.IngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), ing); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, ing)
}

// List handles GET /catalog/ingredients.
func (h *IngredientHandler) List(c *gin.Context) {
	ings, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ings)
}

// Get handles GET /catalog/ingredients/:id.
func (h *IngredientHandler) Get(c *gin.Context) {
	ingID, ok := h.parseID(c)
	if !ok {
		return
	}

	ing, err := h.service.GetByID(c.Request.Context(), ingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ing)
}

// Update handles PUT /catalog/ingredients/:id.
func (h *IngredientHandler) Update(c *gin.Context) {
	ingID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.IngredientRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ing, err := h.service.GetByID(c.Request.Context(), ingID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(ing)
	if err := h.service.Update(c.Request.Context(), ing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ing)
}

// Delete handles DELETE /catalog/ingredients/:id.
func (h *IngredientHandler) Delete(c *gin.Context) {
	ingID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ingID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *IngredientHandler) parseID(c *gin.Context) (id.ID, bool) {
	ingID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return ingID, true
}
