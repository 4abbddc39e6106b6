package recipe

import (
	"context"

	"bakehouse/internal/core/id"
)

// Repository defines recipe persistence operations. Reads always return
// recipes with their composition lines attached.
type Repository interface {
	Create(ctx context.Context, r *Recipe) error
	GetByID(ctx context.Context, recipeID id.ID) (*Recipe, error)
	List(ctx context.Context) ([]*Recipe, error)
	Update(ctx context.Context, r *Recipe) error
	Delete(ctx context.Context, recipeID id.ID) error
}
