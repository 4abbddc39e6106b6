// Package main is the entry point for the bakehouse API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakehouse/internal/core/security"
	"bakehouse/internal/domain/auth"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/orders"
	v1 "bakehouse/internal/infrastructure/http/v1"
	"bakehouse/internal/infrastructure/storage/postgres"
	"bakehouse/internal/infrastructure/storage/postgres/auth_repo"
	"bakehouse/internal/infrastructure/storage/postgres/catalog_repo"
	"bakehouse/internal/infrastructure/storage/postgres/order_repo"
	"bakehouse/pkg/logger"
)

const version = "1.0.0"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting bakehouse server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	ingredientRepo := catalog_repo.NewIngredientRepo(txManager)
	recipeRepo := catalog_repo.NewRecipeRepo(txManager)
	orderRepo := order_repo.NewOrderRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Services ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(
		getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
	))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	ingredientService := ingredient.NewService(ingredientRepo)
	recipeService := recipe.NewService(recipeRepo)
	orderService := orders.NewService(orderRepo, recipeRepo, ingredientRepo, txManager, auditService)

	// --- Role policies ---
	statusPolicy, err := security.CompilePolicy(getEnv("ORDER_STATUS_POLICY", security.DefaultStatusPolicy))
	if err != nil {
		log.Fatalw("invalid status policy", "error", err)
	}
	deletePolicy, err := security.CompilePolicy(getEnv("ORDER_DELETE_POLICY", security.DefaultDeletePolicy))
	if err != nil {
		log.Fatalw("invalid delete policy", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:              pool.Pool,
		Logger:            log,
		Version:           version,
		JWTValidator:      jwtService,
		AuthService:       authService,
		OrderService:      orderService,
		IngredientService: ingredientService,
		RecipeService:     recipeService,
		StatusPolicy:      statusPolicy,
		DeletePolicy:      deletePolicy,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
