package ingredient

import (
	"context"
	"fmt"

	"bakehouse/internal/core/id"
	"bakehouse/pkg/logger"
)

// Service provides business operations for the ingredient catalog.
type Service struct {
	repo Repository
}

// NewService creates a new ingredient service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new ingredient.
func (s *Service) Create(ctx context.Context, ing *Ingredient) error {
	if err := ing.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, ing); err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}

	logger.Info(ctx, "ingredient created", "id", ing.ID, "name", ing.Name, "unit", ing.Unit)
	return nil
}

// GetByID retrieves one ingredient.
func (s *Service) GetByID(ctx context.Context, ingID id.ID) (*Ingredient, error) {
	return s.repo.GetByID(ctx, ingID)
}

// List retrieves all ingredients.
func (s *Service) List(ctx context.Context) ([]*Ingredient, error) {
	return s.repo.List(ctx)
}

// Update validates and persists changes to an ingredient.
func (s *Service) Update(ctx context.Context, ing *Ingredient) error {
	if err := ing.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, ing); err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	logger.Info(ctx, "ingredient updated", "id", ing.ID)
	return nil
}

// Delete removes an ingredient from the catalog.
func (s *Service) Delete(ctx context.Context, ingID id.ID) error {
	if err := s.repo.Delete(ctx, ingID); err != nil {
		return err
	}

	logger.Info(ctx, "ingredient deleted", "id", ingID)
	return nil
}
