package handlers

import (
	"github.com/gin-gonic/gin"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/auth"
)

// AuthHandler handles authentication and account endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// RegisterRoutes attaches auth endpoints. Login is public; account
// management requires an authenticated admin.
func (h *AuthHandler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.POST("/login", h.Login)

	admin.POST("/users", h.Register)
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/role", h.ChangeRole)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var creds auth.Credentials
	if !h.BindJSON(c, &creds) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), creds)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, session)
}

// Register handles POST /auth/users.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user)
}

// ListUsers handles GET /auth/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, users)
}

// ChangeRole handles PUT /auth/users/:id/role.
func (h *AuthHandler) ChangeRole(c *gin.Context) {
	userID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.ChangeRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, user)
}
