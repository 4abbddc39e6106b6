package ingredient

import (
	"context"

	"bakehouse/internal/core/id"
)

// Repository defines ingredient persistence operations.
// Mutating operations participate in the caller's transaction when one
// is carried by the context.
type Repository interface {
	Create(ctx context.Context, ing *Ingredient) error
	GetByID(ctx context.Context, ingID id.ID) (*Ingredient, error)
	List(ctx context.Context) ([]*Ingredient, error)
	Update(ctx context.Context, ing *Ingredient) error
	Delete(ctx context.Context, ingID id.ID) error

	// GetManyForUpdate loads the given ingredients with row locks so the
	// sufficiency check and the subsequent stock writes are serialized
	// against concurrent order mutations.
	GetManyForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*Ingredient, error)

	// AdjustUnits shifts units_in_stock by delta (negative = consume).
	// Fails without applying anything when the adjustment would drive
	// the stock negative.
	AdjustUnits(ctx context.Context, ingID id.ID, delta float64) error
}
