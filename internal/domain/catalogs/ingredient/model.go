// Package ingredient provides the stocked-ingredient catalog.
// Stock is tracked as a floating count of discrete physical units;
// for mass/volume ingredients each physical unit is one package of
// WeightPerUnit base quantity (grams or milliliters).
package ingredient

import (
	"context"
	"strings"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/measure"
)

// Ingredient represents one stocked ingredient.
type Ingredient struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// Unit is the measurement unit the ingredient is stocked in.
	Unit measure.Unit `db:"unit" json:"unit"`

	// UnitsInStock is the count of physical units currently held.
	// Fractional counts are allowed (an opened bag of flour).
	UnitsInStock float64 `db:"units_in_stock" json:"unitsInStock"`

	// WeightPerUnit is the base quantity (grams or ml) one physical unit
	// represents, expressed in the ingredient's own Unit. Meaningful only
	// for non-count units.
	WeightPerUnit float64 `db:"weight_per_unit" json:"weightPerUnit"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// QuantityInStock returns the total stock expressed as base quantity.
// For unit-count ingredients it equals UnitsInStock.
func (i *Ingredient) QuantityInStock() float64 {
	if measure.IsCount(i.Unit) {
		return i.UnitsInStock
	}
	perUnit, err := measure.ToBase(i.WeightPerUnit, i.Unit)
	if err != nil {
		return 0
	}
	return i.UnitsInStock * perUnit
}

// BasePerUnit returns the base quantity one physical unit represents.
// Fails with InvalidUnitConfiguration when the configured value cannot
// produce a physical unit count.
func (i *Ingredient) BasePerUnit() (float64, error) {
	perUnit, err := measure.ToBase(i.WeightPerUnit, i.Unit)
	if err != nil {
		return 0, apperror.NewInvalidUnitConfig(i.Name, i.WeightPerUnit).WithCause(err)
	}
	if !measure.ValidBaseQuantity(perUnit) {
		return 0, apperror.NewInvalidUnitConfig(i.Name, perUnit)
	}
	return perUnit, nil
}

// New creates an ingredient with a generated ID.
func New(name string, unit measure.Unit, unitsInStock, weightPerUnit float64) *Ingredient {
	now := time.Now().UTC()
	return &Ingredient{
		ID:            id.New(),
		Name:          name,
		Unit:          unit,
		UnitsInStock:  unitsInStock,
		WeightPerUnit: weightPerUnit,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks catalog invariants.
func (i *Ingredient) Validate(ctx context.Context) error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("ingredient name is required").
			WithDetail("field", "name")
	}

	if !measure.Valid(i.Unit) {
		return apperror.NewValidation("unknown measurement unit").
			WithDetail("field", "unit").
			WithDetail("value", string(i.Unit))
	}

	if i.UnitsInStock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "unitsInStock")
	}

	if !measure.IsCount(i.Unit) && i.WeightPerUnit <= 0 {
		return apperror.NewValidation("weight per unit must be positive for mass/volume ingredients").
			WithDetail("field", "weightPerUnit")
	}

	return nil
}
