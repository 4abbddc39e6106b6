package dto

import (
	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/measure"
)

// IngredientRequest is the payload for creating or updating an ingredient.
type IngredientRequest struct {
	Name          string  `json:"name"`
	Unit          string  `json:"unit"`
	UnitsInStock  float64 `json:"unitsInStock"`
	WeightPerUnit float64 `json:"weightPerUnit"`
}

// ToEntity converts the request into a new ingredient.
func (r IngredientRequest) ToEntity() *ingredient.Ingredient {
	return ingredient.New(r.Name, measure.Unit(r.Unit), r.UnitsInStock, r.WeightPerUnit)
}

// ApplyTo copies request fields onto an existing ingredient.
func (r IngredientRequest) ApplyTo(ing *ingredient.Ingredient) {
	ing.Name = r.Name
	ing.Unit = measure.Unit(r.Unit)
	ing.UnitsInStock = r.UnitsInStock
	ing.WeightPerUnit = r.WeightPerUnit
}

// RecipeComponentRequest is one composition line of a recipe payload.
type RecipeComponentRequest struct {
	IngredientID string  `json:"ingredientId"`
	UnitAmount   float64 `json:"unitAmount"`
	BaseAmount   float64 `json:"baseAmount"`
}

// RecipeRequest is the payload for creating or updating a recipe.
type RecipeRequest struct {
	Name           string                   `json:"name"`
	ProductionCost *string                  `json:"productionCost"`
	Components     []RecipeComponentRequest `json:"components"`
}

// ToEntity converts the request into a new recipe.
func (r RecipeRequest) ToEntity() (*recipe.Recipe, error) {
	cost, err := r.parseCost()
	if err != nil {
		return nil, err
	}

	rec := recipe.New(r.Name, cost)
	if err := r.applyComponents(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ApplyTo copies request fields onto an existing recipe.
func (r RecipeRequest) ApplyTo(rec *recipe.Recipe) error {
	cost, err := r.parseCost()
	if err != nil {
		return err
	}

	rec.Name = r.Name
	rec.ProductionCost = cost
	rec.Components = rec.Components[:0]
	return r.applyComponents(rec)
}

func (r RecipeRequest) parseCost() (*types.Money, error) {
	if r.ProductionCost == nil {
		return nil, nil
	}
	cost, err := types.NewMoneyFromString(*r.ProductionCost)
	if err != nil {
		return nil, apperror.NewValidation("invalid production cost").
			WithDetail("productionCost", *r.ProductionCost)
	}
	return &cost, nil
}

func (r RecipeRequest) applyComponents(rec *recipe.Recipe) error {
	for i, c := range r.Components {
		ingID, err := id.Parse(c.IngredientID)
		if err != nil {
			return apperror.NewValidation("invalid ingredient id").
				WithDetail("lineNo", i+1).
				WithDetail("ingredientId", c.IngredientID)
		}
		rec.AddComponent(ingID, c.UnitAmount, c.BaseAmount)
	}
	return nil
}
