// Package main provides a CLI tool for creating the schema and seeding
// the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/auth"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/measure"
	"bakehouse/internal/infrastructure/storage/postgres"
	"bakehouse/internal/infrastructure/storage/postgres/auth_repo"
	"bakehouse/internal/infrastructure/storage/postgres/catalog_repo"
	"bakehouse/pkg/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sys_users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		failed_login_attempts INT NOT NULL DEFAULT 0,
		locked_until TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cat_ingredients (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		unit TEXT NOT NULL,
		units_in_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
		weight_per_unit DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT units_in_stock_nonnegative CHECK (units_in_stock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS cat_recipes (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		production_cost NUMERIC(14, 2),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cat_recipe_components (
		recipe_id UUID NOT NULL REFERENCES cat_recipes(id),
		line_id UUID NOT NULL,
		ingredient_id UUID NOT NULL REFERENCES cat_ingredients(id),
		unit_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		base_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (recipe_id, line_id)
	)`,
	`CREATE TABLE IF NOT EXISTS doc_orders (
		id UUID PRIMARY KEY,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		status TEXT NOT NULL,
		total NUMERIC(14, 2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS doc_order_lines (
		order_id UUID NOT NULL REFERENCES doc_orders(id),
		line_id UUID NOT NULL,
		recipe_id UUID NOT NULL REFERENCES cat_recipes(id),
		quantity INT NOT NULL,
		PRIMARY KEY (order_id, line_id)
	)`,
	`CREATE TABLE IF NOT EXISTS sys_audit (
		id UUID PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id UUID NOT NULL,
		action TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		user_email TEXT NOT NULL DEFAULT '',
		changes JSONB,
		changes_compressed BYTEA,
		compression_algo TEXT NOT NULL DEFAULT 'none',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_name ON doc_orders (customer_name)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON sys_audit (entity_type, entity_id, created_at DESC)`,
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}
	log.Info("schema applied")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@bakehouse.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	users := auth_repo.NewUserRepo(txManager)

	exists, err := users.Exists(ctx, adminEmail)
	if err != nil {
		return fmt.Errorf("check admin exists: %w", err)
	}
	if exists {
		log.Infow("admin user already exists", "email", adminEmail)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(adminEmail, "Administrator", string(hash), auth.RoleAdmin)
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Infow("admin user created", "email", adminEmail)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	ingredients := catalog_repo.NewIngredientRepo(txManager)
	recipes := catalog_repo.NewRecipeRepo(txManager)

	flour := ingredient.New("wheat flour", measure.UnitKilogram, 20, 1)
	sugar := ingredient.New("sugar", measure.UnitKilogram, 15, 1)
	butter := ingredient.New("butter", measure.UnitGram, 40, 200)
	milk := ingredient.New("whole milk", measure.UnitLiter, 12, 1)
	eggs := ingredient.New("eggs", measure.UnitCount, 90, 0)
	chocolate := ingredient.New("dark chocolate", measure.UnitGram, 25, 100)

	for _, ing := range []*ingredient.Ingredient{flour, sugar, butter, milk, eggs, chocolate} {
		if err := ingredients.Create(ctx, ing); err != nil {
			return fmt.Errorf("create ingredient %s: %w", ing.Name, err)
		}
	}

	chocolateCake := recipe.New("chocolate cake", costPtr("32.50"))
	chocolateCake.AddComponent(flour.ID, 0.3, 300)
	chocolateCake.AddComponent(sugar.ID, 0.25, 250)
	chocolateCake.AddComponent(butter.ID, 0, 150)
	chocolateCake.AddComponent(eggs.ID, 4, 0)
	chocolateCake.AddComponent(chocolate.ID, 0, 200)

	milkBread := recipe.New("milk bread", costPtr("8.00"))
	milkBread.AddComponent(flour.ID, 0.5, 500)
	milkBread.AddComponent(milk.ID, 0.3, 300)
	milkBread.AddComponent(butter.ID, 0, 50)

	butterCookies := recipe.New("butter cookies", costPtr("12.75"))
	butterCookies.AddComponent(flour.ID, 0.2, 200)
	butterCookies.AddComponent(sugar.ID, 0.1, 100)
	butterCookies.AddComponent(butter.ID, 0, 120)
	butterCookies.AddComponent(eggs.ID, 1, 0)

	for _, rec := range []*recipe.Recipe{chocolateCake, milkBread, butterCookies} {
		if err := recipes.Create(ctx, rec); err != nil {
			return fmt.Errorf("create recipe %s: %w", rec.Name, err)
		}
	}

	log.Info("demo catalog seeded")
	return nil
}

func costPtr(s string) *types.Money {
	cost := types.MustMoney(s)
	return &cost
}
