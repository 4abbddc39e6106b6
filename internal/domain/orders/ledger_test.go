package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/domain/measure"
)

func testIngredient(name string, unit measure.Unit, unitsInStock, weightPerUnit float64) *ingredient.Ingredient {
	return ingredient.New(name, unit, unitsInStock, weightPerUnit)
}

func testRecipe(name string, cost string) *recipe.Recipe {
	c := types.MustMoney(cost)
	return recipe.New(name, &c)
}

func stockMap(ings ...*ingredient.Ingredient) map[id.ID]*ingredient.Ingredient {
	out := make(map[id.ID]*ingredient.Ingredient, len(ings))
	for _, ing := range ings {
		out[ing.ID] = ing
	}
	return out
}

func recipeMap(recs ...*recipe.Recipe) map[id.ID]*recipe.Recipe {
	out := make(map[id.ID]*recipe.Recipe, len(recs))
	for _, r := range recs {
		out[r.ID] = r
	}
	return out
}

func TestBuildLedger_AggregatesAcrossRecipes(t *testing.T) {
	flour := testIngredient("flour", measure.UnitKilogram, 4, 1) // 1 kg bags
	eggs := testIngredient("eggs", measure.UnitCount, 30, 0)

	cake := testRecipe("cake", "25.00")
	cake.AddComponent(flour.ID, 0.05, 50) // 50 g
	cake.AddComponent(eggs.ID, 3, 0)

	pie := testRecipe("pie", "18.00")
	pie.AddComponent(flour.ID, 0.03, 30) // 30 g

	lines := []LineInput{
		{RecipeID: cake.ID, Quantity: 2},
		{RecipeID: pie.ID, Quantity: 1},
	}

	ledger, err := BuildLedger(lines, recipeMap(cake, pie), stockMap(flour, eggs))
	require.NoError(t, err)
	require.Len(t, ledger, 2)

	// 2×50 + 1×30 into the base accumulator, nothing discrete.
	assert.InDelta(t, 130, ledger[flour.ID].Base, 1e-9)
	assert.Zero(t, ledger[flour.ID].Units)

	// 2×3 eggs into the discrete accumulator, nothing in base.
	assert.InDelta(t, 6, ledger[eggs.ID].Units, 1e-9)
	assert.Zero(t, ledger[eggs.ID].Base)
}

func TestBuildLedger_MissingRecipe(t *testing.T) {
	lines := []LineInput{{RecipeID: id.New(), Quantity: 1}}

	ledger, err := BuildLedger(lines, recipeMap(), stockMap())
	require.Error(t, err)
	assert.Nil(t, ledger)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBuildLedger_MissingIngredientFailsAtomically(t *testing.T) {
	flour := testIngredient("flour", measure.UnitKilogram, 4, 1)

	cake := testRecipe("cake", "25.00")
	cake.AddComponent(flour.ID, 0.05, 50)
	cake.AddComponent(id.New(), 2, 0) // dangling reference

	lines := []LineInput{{RecipeID: cake.ID, Quantity: 1}}

	ledger, err := BuildLedger(lines, recipeMap(cake), stockMap(flour))
	require.Error(t, err)
	assert.Nil(t, ledger)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBuildDemand_Total(t *testing.T) {
	flour := testIngredient("flour", measure.UnitKilogram, 4, 1)

	cake := testRecipe("cake", "25.50")
	cake.AddComponent(flour.ID, 0.05, 50)
	pie := testRecipe("pie", "18.00")
	pie.AddComponent(flour.ID, 0.03, 30)

	lines := []LineInput{
		{RecipeID: cake.ID, Quantity: 3},
		{RecipeID: pie.ID, Quantity: 2},
	}

	_, total, err := BuildDemand(lines, recipeMap(cake, pie), stockMap(flour))
	require.NoError(t, err)
	assert.True(t, total.Equal(types.MustMoney("112.50")), "got %s", total)
}

func TestBuildDemand_MissingProductionCost(t *testing.T) {
	flour := testIngredient("flour", measure.UnitKilogram, 4, 1)

	cake := recipe.New("cake", nil)
	cake.AddComponent(flour.ID, 0.05, 50)

	lines := []LineInput{{RecipeID: cake.ID, Quantity: 1}}

	_, _, err := BuildDemand(lines, recipeMap(cake), stockMap(flour))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingProductionCost))
}

func TestLedger_NegateMerge(t *testing.T) {
	ingID := id.New()

	old := Ledger{ingID: {IngredientID: ingID, Base: 100}}
	updated := Ledger{ingID: {IngredientID: ingID, Base: 130}}

	net := old.Negate().Merge(updated)
	assert.InDelta(t, 30, net[ingID].Base, 1e-9)

	// A no-op edit nets to zero demand.
	same := old.Negate().Merge(old)
	assert.Zero(t, same[ingID].Base)
	assert.Zero(t, same[ingID].Units)
}
