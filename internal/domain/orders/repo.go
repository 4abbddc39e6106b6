package orders

import (
	"context"

	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
)

// Repository defines order persistence operations. Every method
// participates in the caller's transaction when one is carried by the
// context; the service never commits order writes separately from the
// stock adjustments they belong to.
type Repository interface {
	// Create persists the order record and its lines.
	Create(ctx context.Context, ord *Order) error

	// GetByID returns the order with its lines, or NotFound.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// List returns orders with lines, optionally filtered by a
	// case-insensitive substring of the customer name.
	List(ctx context.Context, nameFilter string) ([]*Order, error)

	// ReplaceLines deletes and recreates the order's lines.
	ReplaceLines(ctx context.Context, orderID id.ID, lines []Line) error

	// UpdateFields rewrites customer fields and the cached total.
	UpdateFields(ctx context.Context, orderID id.ID, customerName, customerPhone string, total types.Money) error

	// UpdateStatus rewrites the order status.
	UpdateStatus(ctx context.Context, orderID id.ID, status Status) error

	// Delete removes the order and its lines.
	Delete(ctx context.Context, orderID id.ID) error
}
