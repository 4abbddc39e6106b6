package handlers

import (
	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/security"
	"bakehouse/internal/domain/auth"
	"bakehouse/internal/domain/orders"
	"bakehouse/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles HTTP requests for customer orders.
type OrderHandler struct {
	*BaseHandler
	service      *orders.Service
	statusPolicy *security.Policy
	deletePolicy *security.Policy
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service, statusPolicy, deletePolicy *security.Policy) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  base,
		service:      service,
		statusPolicy: statusPolicy,
		deletePolicy: deletePolicy,
	}
}

// RegisterRoutes attaches the order endpoints.
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PUT("/:id/status", h.ChangeStatus)
	rg.DELETE("/:id", h.Delete)
}

// Create handles POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ord, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, ord)
}

// List handles GET /orders?customer=....
func (h *OrderHandler) List(c *gin.Context) {
	found, err := h.service.List(c.Request.Context(), c.Query("customer"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, found)
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	ord, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ord)
}

// Update handles PUT /orders/:id. Editing is a supervisor-level
// operation; plain staff can only create and read.
func (h *OrderHandler) Update(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	if role := h.GetRole(c); role == auth.RoleStaff {
		h.Error(c, apperror.NewForbidden("insufficient role for order edit").
			WithDetail("role", role))
		return
	}

	var req dto.UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ord, err := h.service.Update(c.Request.Context(), orderID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, ord)
}

// ChangeStatus handles PUT /orders/:id/status. The role policy is
// checked before the domain sees the request.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.statusPolicy.Authorize(h.GetRole(c), req.Status); err != nil {
		h.Error(c, err)
		return
	}

	status, err := h.service.ChangeStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"id": orderID, "status": status})
}

// Delete handles DELETE /orders/:id.
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.deletePolicy.Authorize(h.GetRole(c), ""); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *OrderHandler) parseID(c *gin.Context) (id.ID, bool) {
	orderID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return id.Nil(), false
	}
	return orderID, true
}
