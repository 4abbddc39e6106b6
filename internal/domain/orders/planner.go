package orders

import (
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/measure"
)

// StockAdjustment is one intent to shift an ingredient's physical unit
// count: negative DeltaUnits consumes stock, positive restores it. All
// adjustments for one order mutation are applied inside one transaction
// together with the order record writes.
type StockAdjustment struct {
	IngredientID id.ID
	DeltaUnits   float64
}

// PlanAdjustments converts a signed ledger into stock adjustment
// intents. Unit-count entries debit the discrete accumulator directly;
// all others convert the base accumulator into physical units by
// dividing by the ingredient's base-per-unit. Zero-sum entries (an edit
// that cancels out) emit no adjustment.
func PlanAdjustments(l Ledger, stock map[id.ID]*ingredient.Ingredient) ([]StockAdjustment, error) {
	adjustments := make([]StockAdjustment, 0, len(l))

	for _, ingID := range l.IngredientIDs() {
		entry := l[ingID]
		ing, ok := stock[ingID]
		if !ok {
			// Demand and stock snapshots are loaded from the same
			// transaction view; a miss here is a caller bug.
			continue
		}

		var delta float64
		if measure.IsCount(ing.Unit) {
			delta = -entry.Units
		} else {
			perUnit, err := ing.BasePerUnit()
			if err != nil {
				return nil, err
			}
			delta = -(entry.Base / perUnit)
		}

		if delta == 0 {
			continue
		}

		adjustments = append(adjustments, StockAdjustment{
			IngredientID: ingID,
			DeltaUnits:   delta,
		})
	}

	return adjustments, nil
}
