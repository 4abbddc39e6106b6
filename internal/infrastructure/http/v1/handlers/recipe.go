package handlers

import (
	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/infrastructure/http/v1/dto"
)

// RecipeHandler handles HTTP requests for the recipe catalog.
type RecipeHandler struct {
	*BaseHandler
	service *recipe.Service
}

// NewRecipeHandler creates a new recipe handler.
func NewRecipeHandler(base *BaseHandler, service *recipe.Service) *RecipeHandler {
	return &RecipeHandler{BaseHandler: base, service: service}
}

// RegisterRoutes attaches the recipe endpoints.
func (h *RecipeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /catalog/recipes.
func (h *RecipeHandler) Create(c *gin.Context) {
	var req dto.RecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rec)
}

// List handles GET /catalog/recipes.
func (h *RecipeHandler) List(c *gin.Context) {
	recs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, recs)
}

// Get handles GET /catalog/recipes/:id.
func (h *RecipeHandler) Get(c *gin.Context) {
	recipeID, ok := h.parseID(c)
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rec)
}

// Update handles PUT /catalog/recipes/:id.
func (h *RecipeHandler) Update(c *gin.Context) {
	recipeID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.RecipeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), recipeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(rec); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), rec); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, rec)
}

// Delete handles DELETE /catalog/recipes/:id.
func (h *RecipeHandler) Delete(c *gin.Context) {
	recipeID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), recipeID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *RecipeHandler) parseID(c *gin.Context) (id.ID, bool) {
	recipeID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return recipeID, true
}
