// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"bakehouse/internal/core/security"
	"bakehouse/internal/domain/auth"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/orders"
	"bakehouse/internal/infrastructure/http/v1/handlers"
	"bakehouse/internal/infrastructure/http/v1/middleware"
	"bakehouse/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool    *pgxpool.Pool
	Logger  *logger.Logger
	Version string

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	OrderService      *orders.Service
	IngredientService *ingredient.Service
	RecipeService     *recipe.Service

	// StatusPolicy gates PUT /orders/:id/status; DeletePolicy gates
	// DELETE /orders/:id. Both are CEL expressions over (role, target).
	StatusPolicy *security.Policy
	DeletePolicy *security.Policy
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router.Group("/health"))

	baseHandler := handlers.NewBaseHandler()

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

		publicAuth := apiV1.Group("/auth")
		adminAuth := apiV1.Group("/auth")
		adminAuth.Use(middleware.Auth(cfg.JWTValidator))
		adminAuth.Use(middleware.RequireRole(auth.RoleAdmin))
		authHandler.RegisterRoutes(publicAuth, adminAuth)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		orderHandler := handlers.NewOrderHandler(baseHandler, cfg.OrderService, cfg.StatusPolicy, cfg.DeletePolicy)
		orderHandler.RegisterRoutes(protected.Group("/orders"))

		catalogs := protected.Group("/catalog")
		catalogs.Use(middleware.RequireRole(auth.RoleAdmin, auth.RoleSupervisorSenior, auth.RoleSupervisorJunior))

		ingredientHandler := handlers.NewIngredientHandler(baseHandler, cfg.IngredientService)
		ingredientHandler.RegisterRoutes(catalogs.Group("/ingredients"))

		recipeHandler := handlers.NewRecipeHandler(baseHandler, cfg.RecipeService)
		recipeHandler.RegisterRoutes(catalogs.Group("/recipes"))
	}

	return router
}
