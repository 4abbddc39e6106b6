// Package orders provides the order lifecycle and the order–stock
// reconciliation engine: demand aggregation over recipes, sufficiency
// checking against ingredient stock, and atomic consumption/restoration
// as orders are created, edited, cancelled and deleted.
package orders

import (
	"context"
	"strings"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
)

// Status is the closed set of order states.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", apperror.NewInvalidStatus(s)
	}
}

// IsTerminal reports whether no further edits are allowed in this state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanEdit reports whether line items and customer fields may still change.
func (s Status) CanEdit() bool {
	return !s.IsTerminal()
}

// CanChangeStatus reports whether the order may move to another status.
// Nothing leaves CANCELLED; any other state may move to any recognized
// status (cancelling a COMPLETED order restores its stock).
func (s Status) CanChangeStatus() bool {
	return s != StatusCancelled
}

// Order represents a customer order.
type Order struct {
	ID id.ID `db:"id" json:"id"`

	// CustomerName is case-folded on write for substring search.
	CustomerName  string `db:"customer_name" json:"customerName"`
	CustomerPhone string `db:"customer_phone" json:"customerPhone"`

	Status Status `db:"status" json:"status"`

	// Total is the cached monetary value, recomputed on create/edit.
	Total types.Money `db:"total" json:"total"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Table part: ordered recipes.
	Lines []Line `db:"-" json:"lines"`
}

// Line is one (recipe, quantity) item of an order.
type Line struct {
	LineID   id.ID `db:"line_id" json:"lineId"`
	RecipeID id.ID `db:"recipe_id" json:"recipeId"`
	Quantity int   `db:"quantity" json:"quantity"`
}

// LineInput is a requested order line before it becomes a persisted Line.
type LineInput struct {
	RecipeID id.ID
	Quantity int
}

// CreateInput carries the fields of a new order.
type CreateInput struct {
	CustomerName  string
	CustomerPhone string
	Lines         []LineInput
}

// Validate rejects a create request before any store access.
func (in CreateInput) Validate(ctx context.Context) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "customerName")
	}
	if strings.TrimSpace(in.CustomerPhone) == "" {
		return apperror.NewValidation("customer phone is required").
			WithDetail("field", "customerPhone")
	}
	return validateLines(in.Lines)
}

// UpdateInput carries the desired state of an edited order. Empty
// customer fields keep the existing values.
type UpdateInput struct {
	CustomerName  string
	CustomerPhone string
	Lines         []LineInput
}

// Validate rejects an edit request before any store access.
func (in UpdateInput) Validate(ctx context.Context) error {
	return validateLines(in.Lines)
}

func validateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return apperror.NewValidation("at least one recipe line is required").
			WithDetail("field", "lines")
	}
	for i, l := range lines {
		if id.IsNil(l.RecipeID) {
			return apperror.NewValidation("recipe reference is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if l.Quantity < 1 {
			return apperror.NewValidation("quantity must be at least 1").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
