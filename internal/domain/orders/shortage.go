package orders

import (
	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/measure"
)

// Shortage is the computed deficit for one ingredient, expressed in the
// ingredient's natural display unit: physical units for unit-count
// stock, base quantity (grams/ml) otherwise.
type Shortage struct {
	IngredientID id.ID        `json:"ingredientId"`
	Name         string       `json:"name"`
	Unit         measure.Unit `json:"unit"`
	Required     float64      `json:"required"`
	InStock      float64      `json:"inStock"`
	Short        float64      `json:"short"`
}

// CheckSufficiency compares a demand ledger against the stock snapshot
// and reports every ingredient that cannot be satisfied. Comparison is
// strict: stock exactly equal to the requirement is sufficient. A
// non-empty result rejects the whole operation; nothing is consumed.
//
// For non-count ingredients the comparison happens in physical units
// (required base divided by base-per-unit) while the reported amounts
// stay in base quantity for display.
func CheckSufficiency(demand Ledger, stock map[id.ID]*ingredient.Ingredient) ([]Shortage, error) {
	var shortages []Shortage

	for _, ingID := range demand.IngredientIDs() {
		entry := demand[ingID]
		ing, ok := stock[ingID]
		if !ok {
			return nil, apperror.NewNotFound("ingredient", ingID)
		}

		if measure.IsCount(ing.Unit) {
			if entry.Units > ing.UnitsInStock {
				shortages = append(shortages, Shortage{
					IngredientID: ing.ID,
					Name:         ing.Name,
					Unit:         measure.UnitCount,
					Required:     entry.Units,
					InStock:      ing.UnitsInStock,
					Short:        entry.Units - ing.UnitsInStock,
				})
			}
			continue
		}

		perUnit, err := ing.BasePerUnit()
		if err != nil {
			return nil, err
		}

		unitsRequired := entry.Base / perUnit
		if unitsRequired > ing.UnitsInStock {
			shortages = append(shortages, Shortage{
				IngredientID: ing.ID,
				Name:         ing.Name,
				Unit:         ing.Unit,
				Required:     entry.Base,
				InStock:      ing.QuantityInStock(),
				Short:        entry.Base - ing.QuantityInStock(),
			})
		}
	}

	return shortages, nil
}
