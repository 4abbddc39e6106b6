// Package recipe provides the recipe catalog: what a pastry is made of
// and what one yield costs to produce.
package recipe

import (
	"context"
	"strings"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
)

// Recipe represents one pastry recipe with its composition lines.
type Recipe struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// ProductionCost is the monetary cost of a single yield, precomputed
	// by the revenue subsystem. Nil means undefined: such a recipe cannot
	// be ordered.
	ProductionCost *types.Money `db:"production_cost" json:"productionCost,omitempty"`

	// Table part: required ingredients.
	Components []Component `db:"-" json:"components"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Component is one composition line of a recipe. Exactly one of
// UnitAmount/BaseAmount is semantically active, selected by the
// referenced ingredient's unit kind.
type Component struct {
	LineID       id.ID `db:"line_id" json:"lineId"`
	IngredientID id.ID `db:"ingredient_id" json:"ingredientId"`

	// UnitAmount is the required count of physical units, used when the
	// ingredient is stocked in unit-count.
	UnitAmount float64 `db:"unit_amount" json:"unitAmount"`

	// BaseAmount is the required quantity in grams/ml, used otherwise.
	BaseAmount float64 `db:"base_amount" json:"baseAmount"`
}

// New creates a recipe with a generated ID.
func New(name string, cost *types.Money) *Recipe {
	now := time.Now().UTC()
	return &Recipe{
		ID:             id.New(),
		Name:           name,
		ProductionCost: cost,
		Components:     make([]Component, 0),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// AddComponent appends a composition line.
func (r *Recipe) AddComponent(ingredientID id.ID, unitAmount, baseAmount float64) {
	r.Components = append(r.Components, Component{
		LineID:       id.New(),
		IngredientID: ingredientID,
		UnitAmount:   unitAmount,
		BaseAmount:   baseAmount,
	})
}

// Validate checks catalog invariants.
func (r *Recipe) Validate(ctx context.Context) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperror.NewValidation("recipe name is required").
			WithDetail("field", "name")
	}

	if r.ProductionCost != nil && r.ProductionCost.IsNegative() {
		return apperror.NewValidation("production cost cannot be negative").
			WithDetail("field", "productionCost")
	}

	for i, c := range r.Components {
		if id.IsNil(c.IngredientID) {
			return apperror.NewValidation("ingredient reference is required").
				WithDetail("field", "components").
				WithDetail("lineNo", i+1)
		}
		if c.UnitAmount < 0 || c.BaseAmount < 0 {
			return apperror.NewValidation("component amounts cannot be negative").
				WithDetail("field", "components").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
