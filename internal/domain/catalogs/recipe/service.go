package recipe

import (
	"context"
	"fmt"

	"bakehouse/internal/core/id"
	"bakehouse/pkg/logger"
)

// Service provides business operations for the recipe catalog.
type Service struct {
	repo Repository
}

// NewService creates a new recipe service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new recipe with its components.
func (s *Service) Create(ctx context.Context, r *Recipe) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}

	logger.Info(ctx, "recipe created", "id", r.ID, "name", r.Name, "components", len(r.Components))
	return nil
}

// GetByID retrieves one recipe with components.
func (s *Service) GetByID(ctx context.Context, recipeID id.ID) (*Recipe, error) {
	return s.repo.GetByID(ctx, recipeID)
}

// List retrieves all recipes with components.
func (s *Service) List(ctx context.Context) ([]*Recipe, error) {
	return s.repo.List(ctx)
}

// Update validates and persists changes, replacing components.
func (s *Service) Update(ctx context.Context, r *Recipe) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}

	logger.Info(ctx, "recipe updated", "id", r.ID)
	return nil
}

// Delete removes a recipe and its components.
func (s *Service) Delete(ctx context.Context, recipeID id.ID) error {
	if err := s.repo.Delete(ctx, recipeID); err != nil {
		return err
	}

	logger.Info(ctx, "recipe deleted", "id", recipeID)
	return nil
}
