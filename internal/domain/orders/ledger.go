package orders

import (
	"sort"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/measure"
)

// LedgerEntry accumulates the demand for one physical ingredient across
// all recipe lines of an order. Unit-count ingredients accumulate into
// Units, everything else into Base (grams or milliliters). Entries are
// ephemeral: recomputed per operation, never persisted.
type LedgerEntry struct {
	IngredientID id.ID
	Name         string
	Unit         measure.Unit

	// Units is the required count of discrete physical units.
	Units float64

	// Base is the required base quantity in grams/ml.
	Base float64
}

// Ledger maps ingredient identity to its accumulated demand. A signed
// ledger (negative accumulators) expresses restoration instead of
// consumption.
type Ledger map[id.ID]LedgerEntry

// buildLines converts persisted lines to inputs for aggregation.
func buildLines(lines []Line) []LineInput {
	out := make([]LineInput, len(lines))
	for i, l := range lines {
		out[i] = LineInput{RecipeID: l.RecipeID, Quantity: l.Quantity}
	}
	return out
}

// BuildLedger aggregates ingredient demand for the given lines. It is a
// pure function over the resolved recipes and ingredients: for every
// composition line of every ordered recipe, unit-count ingredients add
// unitAmount × quantity to the discrete accumulator and all others add
// baseAmount × quantity to the base accumulator. Lines referencing the
// same ingredient across different recipes sum into one entry.
//
// Fails atomically: any unresolvable reference rejects the whole order
// and no partial ledger is returned.
func BuildLedger(
	lines []LineInput,
	recipes map[id.ID]*recipe.Recipe,
	ingredients map[id.ID]*ingredient.Ingredient,
) (Ledger, error) {
	ledger := make(Ledger)

	for _, line := range lines {
		rec, ok := recipes[line.RecipeID]
		if !ok {
			return nil, apperror.NewNotFound("recipe", line.RecipeID)
		}

		for _, comp := range rec.Components {
			ing, ok := ingredients[comp.IngredientID]
			if !ok {
				return nil, apperror.NewNotFound("ingredient", comp.IngredientID)
			}

			entry, ok := ledger[ing.ID]
			if !ok {
				entry = LedgerEntry{
					IngredientID: ing.ID,
					Name:         ing.Name,
					Unit:         ing.Unit,
				}
			}

			qty := float64(line.Quantity)
			if measure.IsCount(ing.Unit) {
				entry.Units += comp.UnitAmount * qty
			} else {
				entry.Base += comp.BaseAmount * qty
			}

			ledger[ing.ID] = entry
		}
	}

	return ledger, nil
}

// BuildDemand aggregates demand and the order's total monetary value.
// Unlike BuildLedger it requires every ordered recipe to carry a
// production cost; reversal paths (cancel, delete) use BuildLedger so a
// cost cleared after ordering cannot block restoration.
func BuildDemand(
	lines []LineInput,
	recipes map[id.ID]*recipe.Recipe,
	ingredients map[id.ID]*ingredient.Ingredient,
) (Ledger, types.Money, error) {
	total := types.Zero()

	for _, line := range lines {
		rec, ok := recipes[line.RecipeID]
		if !ok {
			return nil, types.Zero(), apperror.NewNotFound("recipe", line.RecipeID)
		}
		if rec.ProductionCost == nil {
			return nil, types.Zero(), apperror.NewMissingProductionCost(rec.Name)
		}
		total = total.Add(rec.ProductionCost.Mul(types.NewMoney(float64(line.Quantity))))
	}

	ledger, err := BuildLedger(lines, recipes, ingredients)
	if err != nil {
		return nil, types.Zero(), err
	}

	return ledger, total, nil
}

// Negate returns a new ledger with all accumulators sign-flipped,
// turning consumption into restoration and vice versa.
func (l Ledger) Negate() Ledger {
	out := make(Ledger, len(l))
	for ingID, e := range l {
		e.Units = -e.Units
		e.Base = -e.Base
		out[ingID] = e
	}
	return out
}

// Merge returns a new ledger combining l and other entry-wise. Edit is
// expressed as negate-old merged with new.
func (l Ledger) Merge(other Ledger) Ledger {
	out := make(Ledger, len(l)+len(other))
	for ingID, e := range l {
		out[ingID] = e
	}
	for ingID, e := range other {
		if existing, ok := out[ingID]; ok {
			existing.Units += e.Units
			existing.Base += e.Base
			out[ingID] = existing
		} else {
			out[ingID] = e
		}
	}
	return out
}

// IngredientIDs returns the touched ingredient identities in stable order.
func (l Ledger) IngredientIDs() []id.ID {
	ids := make([]id.ID, 0, len(l))
	for ingID := range l {
		ids = append(ids, ingID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
