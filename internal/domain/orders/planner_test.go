package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/measure"
)

func TestCheckSufficiency_BoundaryIsSufficient(t *testing.T) {
	// 4 bags × 250 g: demanding exactly 1000 g is satisfiable,
	// one more gram is not.
	flour := testIngredient("flour", measure.UnitGram, 4, 250)

	demand := Ledger{flour.ID: {IngredientID: flour.ID, Name: flour.Name, Unit: flour.Unit, Base: 1000}}
	shortages, err := CheckSufficiency(demand, stockMap(flour))
	require.NoError(t, err)
	assert.Empty(t, shortages)

	demand[flour.ID] = LedgerEntry{IngredientID: flour.ID, Name: flour.Name, Unit: flour.Unit, Base: 1001}
	shortages, err = CheckSufficiency(demand, stockMap(flour))
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.InDelta(t, 1001, shortages[0].Required, 1e-9)
	assert.InDelta(t, 1000, shortages[0].InStock, 1e-9)
	assert.InDelta(t, 1, shortages[0].Short, 1e-9)
}

func TestCheckSufficiency_FractionalUnits(t *testing.T) {
	// 900 g over 250 g bags needs 3.6 units of 4 available.
	flour := testIngredient("flour", measure.UnitGram, 4, 250)

	demand := Ledger{flour.ID: {IngredientID: flour.ID, Unit: flour.Unit, Base: 900}}
	shortages, err := CheckSufficiency(demand, stockMap(flour))
	require.NoError(t, err)
	assert.Empty(t, shortages)

	// 1100 g needs 4.4 units.
	demand[flour.ID] = LedgerEntry{IngredientID: flour.ID, Unit: flour.Unit, Base: 1100}
	shortages, err = CheckSufficiency(demand, stockMap(flour))
	require.NoError(t, err)
	assert.Len(t, shortages, 1)
}

func TestCheckSufficiency_CountUnits(t *testing.T) {
	eggs := testIngredient("eggs", measure.UnitCount, 6, 0)

	demand := Ledger{eggs.ID: {IngredientID: eggs.ID, Name: eggs.Name, Unit: eggs.Unit, Units: 6}}
	shortages, err := CheckSufficiency(demand, stockMap(eggs))
	require.NoError(t, err)
	assert.Empty(t, shortages)

	demand[eggs.ID] = LedgerEntry{IngredientID: eggs.ID, Name: eggs.Name, Unit: eggs.Unit, Units: 7}
	shortages, err = CheckSufficiency(demand, stockMap(eggs))
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.Equal(t, measure.UnitCount, shortages[0].Unit)
	assert.InDelta(t, 1, shortages[0].Short, 1e-9)
}

func TestCheckSufficiency_InvalidUnitConfigIsAFault(t *testing.T) {
	// Stocked weighted ingredient with a zero weight-per-unit cannot be
	// converted; this must surface as a configuration fault, never be
	// papered over with a default.
	broken := testIngredient("mystery", measure.UnitGram, 5, 0)

	demand := Ledger{broken.ID: {IngredientID: broken.ID, Unit: broken.Unit, Base: 100}}
	_, err := CheckSufficiency(demand, stockMap(broken))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidUnitConfig))
}

func TestPlanAdjustments_SignedDeltas(t *testing.T) {
	flour := testIngredient("flour", measure.UnitGram, 10, 250)
	eggs := testIngredient("eggs", measure.UnitCount, 30, 0)

	consumption := Ledger{
		flour.ID: {IngredientID: flour.ID, Unit: flour.Unit, Base: 500},
		eggs.ID:  {IngredientID: eggs.ID, Unit: eggs.Unit, Units: 3},
	}

	adjustments, err := PlanAdjustments(consumption, stockMap(flour, eggs))
	require.NoError(t, err)
	require.Len(t, adjustments, 2)

	byID := make(map[id.ID]float64)
	for _, adj := range adjustments {
		byID[adj.IngredientID] = adj.DeltaUnits
	}
	assert.InDelta(t, -2, byID[flour.ID], 1e-9) // 500 g / 250 g per bag
	assert.InDelta(t, -3, byID[eggs.ID], 1e-9)

	// The same ledger negated plans the exact opposite restoration.
	restores, err := PlanAdjustments(consumption.Negate(), stockMap(flour, eggs))
	require.NoError(t, err)
	for _, adj := range restores {
		assert.InDelta(t, -byID[adj.IngredientID], adj.DeltaUnits, 1e-9)
	}
}

func TestPlanAdjustments_SkipsZeroEntries(t *testing.T) {
	flour := testIngredient("flour", measure.UnitGram, 10, 250)

	noop := Ledger{flour.ID: {IngredientID: flour.ID, Unit: flour.Unit, Base: 0}}
	adjustments, err := PlanAdjustments(noop, stockMap(flour))
	require.NoError(t, err)
	assert.Empty(t, adjustments)
}

func TestPlanAdjustments_DeterministicOrder(t *testing.T) {
	a := testIngredient("a", measure.UnitCount, 10, 0)
	b := testIngredient("b", measure.UnitCount, 10, 0)
	c := testIngredient("c", measure.UnitCount, 10, 0)

	l := Ledger{
		a.ID: {IngredientID: a.ID, Unit: a.Unit, Units: 1},
		b.ID: {IngredientID: b.ID, Unit: b.Unit, Units: 1},
		c.ID: {IngredientID: c.ID, Unit: c.Unit, Units: 1},
	}

	first, err := PlanAdjustments(l, stockMap(a, b, c))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := PlanAdjustments(l, stockMap(a, b, c))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
