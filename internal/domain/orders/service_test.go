package orders

import (
	"context"
	"errors"
	"strings"
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

// --- fakes ---

// fakeTxManager mimics a database transaction over the in-memory
// repos: it snapshots their state on begin and restores it when the
// transaction function fails, so partially applied mutations are
// rolled back the way Postgres would.
type fakeTxManager struct {
	ingredients *memIngredientRepo
	orders      *memOrderRepo
}

func (m fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	ingSnap := m.ingredients.snapshot()
	ordSnap := m.orders.snapshot()
	if err := fn(ctx); err != nil {
		m.ingredients.restore(ingSnap)
		m.orders.restore(ordSnap)
		return err
	}
	return nil
}

type memIngredientRepo struct {
	items map[id.ID]*ingredient.Ingredient
}

func newMemIngredientRepo(ings ...*ingredient.Ingredient) *memIngredientRepo {
	r := &memIngredientRepo{items: make(map[id.ID]*ingredient.Ingredient)}
	for _, ing := range ings {
		r.items[ing.ID] = ing
	}
	return r
}

func (r *memIngredientRepo) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	r.items[ing.ID] = ing
	return nil
}

func (r *memIngredientRepo) GetByID(ctx context.Context, ingID id.ID) (*ingredient.Ingredient, error) {
	ing, ok := r.items[ingID]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", ingID)
	}
	return ing, nil
}

func (r *memIngredientRepo) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	out := make([]*ingredient.Ingredient, 0, len(r.items))
	for _, ing := range r.items {
		out = append(out, ing)
	}
	return out, nil
}

func (r *memIngredientRepo) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	r.items[ing.ID] = ing
	return nil
}

func (r *memIngredientRepo) Delete(ctx context.Context, ingID id.ID) error {
	delete(r.items, ingID)
	return nil
}

func (r *memIngredientRepo) GetManyForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*ingredient.Ingredient, error) {
	out := make(map[id.ID]*ingredient.Ingredient, len(ids))
	for _, ingID := range ids {
		ing, ok := r.items[ingID]
		if !ok {
			return nil, apperror.NewNotFound("ingredient", ingID)
		}
		out[ingID] = ing
	}
	return out, nil
}

func (r *memIngredientRepo) AdjustUnits(ctx context.Context, ingID id.ID, delta float64) error {
	ing, ok := r.items[ingID]
	if !ok {
		return apperror.NewNotFound("ingredient", ingID)
	}
	if ing.UnitsInStock+delta < 0 {
		return apperror.NewInsufficientStock().WithDetail("ingredient", ing.Name)
	}
	ing.UnitsInStock += delta
	return nil
}

func (r *memIngredientRepo) unitsOf(ingID id.ID) float64 {
	return r.items[ingID].UnitsInStock
}

func (r *memIngredientRepo) snapshot() map[id.ID]*ingredient.Ingredient {
	snap := make(map[id.ID]*ingredient.Ingredient, len(r.items))
	for ingID, ing := range r.items {
		copied := *ing
		snap[ingID] = &copied
	}
	return snap
}

func (r *memIngredientRepo) restore(snap map[id.ID]*ingredient.Ingredient) {
	// Restore in place so pointers held by the fixture stay live.
	for ingID, ing := range r.items {
		if prev, ok := snap[ingID]; ok {
			*ing = *prev
		} else {
			delete(r.items, ingID)
		}
	}
	for ingID, prev := range snap {
		if _, ok := r.items[ingID]; !ok {
			copied := *prev
			r.items[ingID] = &copied
		}
	}
}

// failingIngredientRepo delegates to the in-memory repo but fails the
// stock adjustment whose ordinal matches failAt (1-based, counted
// across the repo's lifetime).
type failingIngredientRepo struct {
	*memIngredientRepo
	failAt int
	calls  int
}

func (r *failingIngredientRepo) AdjustUnits(ctx context.Context, ingID id.ID, delta float64) error {
	r.calls++
	if r.calls == r.failAt {
		return apperror.NewDatabase(errors.New("connection reset by peer"))
	}
	return r.memIngredientRepo.AdjustUnits(ctx, ingID, delta)
}

type memRecipeRepo struct {
	items map[id.ID]*recipe.Recipe
}

func newMemRecipeRepo(recs ...*recipe.Recipe) *memRecipeRepo {
	r := &memRecipeRepo{items: make(map[id.ID]*recipe.Recipe)}
	for _, rec := range recs {
		r.items[rec.ID] = rec
	}
	return r
}

func (r *memRecipeRepo) Create(ctx context.Context, rec *recipe.Recipe) error {
	r.items[rec.ID] = rec
	return nil
}

func (r *memRecipeRepo) GetByID(ctx context.Context, recipeID id.ID) (*recipe.Recipe, error) {
	rec, ok := r.items[recipeID]
	if !ok {
		return nil, apperror.NewNotFound("recipe", recipeID)
	}
	return rec, nil
}

func (r *memRecipeRepo) List(ctx context.Context) ([]*recipe.Recipe, error) {
	out := make([]*recipe.Recipe, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRecipeRepo) Update(ctx context.Context, rec *recipe.Recipe) error {
	r.items[rec.ID] = rec
	return nil
}

func (r *memRecipeRepo) Delete(ctx context.Context, recipeID id.ID) error {
	delete(r.items, recipeID)
	return nil
}

type memOrderRepo struct {
	items map[id.ID]*Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{items: make(map[id.ID]*Order)}
}

func (r *memOrderRepo) Create(ctx context.Context, ord *Order) error {
	copied := *ord
	copied.Lines = append([]Line(nil), ord.Lines...)
	r.items[ord.ID] = &copied
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	ord, ok := r.items[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	copied := *ord
	copied.Lines = append([]Line(nil), ord.Lines...)
	return &copied, nil
}

func (r *memOrderRepo) List(ctx context.Context, nameFilter string) ([]*Order, error) {
	var out []*Order
	for _, ord := range r.items {
		if nameFilter != "" && !strings.Contains(ord.CustomerName, nameFilter) {
			continue
		}
		out = append(out, ord)
	}
	return out, nil
}

func (r *memOrderRepo) ReplaceLines(ctx context.Context, orderID id.ID, lines []Line) error {
	ord, ok := r.items[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	ord.Lines = append([]Line(nil), lines...)
	return nil
}

func (r *memOrderRepo) UpdateFields(ctx context.Context, orderID id.ID, customerName, customerPhone string, total types.Money) error {
	ord, ok := r.items[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	ord.CustomerName = customerName
	ord.CustomerPhone = customerPhone
	ord.Total = total
	return nil
}

func (r *memOrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status Status) error {
	ord, ok := r.items[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	ord.Status = status
	return nil
}

func (r *memOrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	if _, ok := r.items[orderID]; !ok {
		return apperror.NewNotFound("order", orderID)
	}
	delete(r.items, orderID)
	return nil
}

func (r *memOrderRepo) snapshot() map[id.ID]*Order {
	snap := make(map[id.ID]*Order, len(r.items))
	for orderID, ord := range r.items {
		copied := *ord
		copied.Lines = append([]Line(nil), ord.Lines...)
		snap[orderID] = &copied
	}
	return snap
}

func (r *memOrderRepo) restore(snap map[id.ID]*Order) {
	r.items = snap
}

// --- fixtures ---

type fixture struct {
	svc         *Service
	orders      *memOrderRepo
	ingredients *memIngredientRepo

	flour *ingredient.Ingredient // 10 bags × 1 kg
	eggs  *ingredient.Ingredient // 30 eggs
	cake  *recipe.Recipe         // 200 g flour + 3 eggs, R$ 25.00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	flour := testIngredient("flour", measure.UnitKilogram, 10, 1)
	eggs := testIngredient("eggs", measure.UnitCount, 30, 0)

	cake := testRecipe("cake", "25.00")
	cake.AddComponent(flour.ID, 0.2, 200)
	cake.AddComponent(eggs.ID, 3, 0)

	orders := newMemOrderRepo()
	ingredients := newMemIngredientRepo(flour, eggs)
	recipes := newMemRecipeRepo(cake)
	txm := fakeTxManager{ingredients: ingredients, orders: orders}

	return &fixture{
		svc:         NewService(orders, recipes, ingredients, txm, nil),
		orders:      orders,
		ingredients: ingredients,
		flour:       flour,
		eggs:        eggs,
		cake:        cake,
	}
}

func (f *fixture) createOrder(t *testing.T, qty int) *Order {
	t.Helper()
	ord, err := f.svc.Create(context.Background(), CreateInput{
		CustomerName:  "Maria Silva",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: f.cake.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return ord
}

// --- tests ---

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2)

	assert.Equal(t, StatusPending, ord.Status)
	assert.Equal(t, "maria silva", ord.CustomerName)
	assert.True(t, ord.Total.Equal(types.MustMoney("50.00")), "got %s", ord.Total)
	require.Len(t, ord.Lines, 1)

	// 400 g of 1 kg bags = 0.4 bags; 6 eggs.
	assert.InDelta(t, 9.6, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 24, f.ingredients.unitsOf(f.eggs.ID), 1e-9)

	stored, err := f.svc.GetByID(ctx, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, ord.ID, stored.ID)
}

func TestService_Create_InsufficientStockLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 11 cakes need 33 eggs of 30 available.
	_, err := f.svc.Create(ctx, CreateInput{
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: f.cake.ID, Quantity: 11}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	shortages, ok := appErr.Details["shortages"].([]Shortage)
	require.True(t, ok)
	require.Len(t, shortages, 1)
	assert.Equal(t, f.eggs.ID, shortages[0].IngredientID)

	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 30, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
	assert.Empty(t, f.orders.items)
}

// failingFixture wires the service over a store whose stock
// adjustments can be made to fail mid-sequence.
func newFailingFixture(t *testing.T) (*fixture, *failingIngredientRepo) {
	t.Helper()

	flour := testIngredient("flour", measure.UnitKilogram, 10, 1)
	eggs := testIngredient("eggs", measure.UnitCount, 30, 0)

	cake := testRecipe("cake", "25.00")
	cake.AddComponent(flour.ID, 0.2, 200)
	cake.AddComponent(eggs.ID, 3, 0)

	orders := newMemOrderRepo()
	ingredients := newMemIngredientRepo(flour, eggs)
	flaky := &failingIngredientRepo{memIngredientRepo: ingredients}
	txm := fakeTxManager{ingredients: ingredients, orders: orders}

	f := &fixture{
		svc:         NewService(orders, newMemRecipeRepo(cake), flaky, txm, nil),
		orders:      orders,
		ingredients: ingredients,
		flour:       flour,
		eggs:        eggs,
		cake:        cake,
	}
	return f, flaky
}

func TestService_Create_MidAdjustmentFailureRollsBack(t *testing.T) {
	f, flaky := newFailingFixture(t)
	flaky.failAt = 2

	// Two ingredients mean two stock adjustments; the second one dies.
	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: f.cake.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDatabase))
	require.Equal(t, 2, flaky.calls, "the first adjustment must have been applied before the failure")

	// The applied first adjustment and the order record are both gone.
	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 30, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
	assert.Empty(t, f.orders.items)
}

func TestService_Update_MidAdjustmentFailureRollsBack(t *testing.T) {
	f, flaky := newFailingFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2) // calls 1 and 2

	// Growing the order to 5 cakes needs two net adjustments; fail the
	// second so the first one's debit must be undone.
	flaky.failAt = flaky.calls + 2
	_, err := f.svc.Update(ctx, ord.ID, UpdateInput{
		Lines: []LineInput{{RecipeID: f.cake.ID, Quantity: 5}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeDatabase))

	// Stock and the stored order reflect the original 2-cake state.
	assert.InDelta(t, 9.6, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 24, f.ingredients.unitsOf(f.eggs.ID), 1e-9)

	stored, getErr := f.svc.GetByID(ctx, ord.ID)
	require.NoError(t, getErr)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, 2, stored.Lines[0].Quantity)
	assert.True(t, stored.Total.Equal(types.MustMoney("50.00")), "got %s", stored.Total)
}

func TestService_Create_MissingProductionCost(t *testing.T) {
	f := newFixture(t)
	f.cake.ProductionCost = nil

	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: f.cake.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMissingProductionCost))
	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
}

func TestService_Create_UnknownRecipe(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerName:  "Maria",
		CustomerPhone: "11999990000",
		Lines:         []LineInput{{RecipeID: id.New(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_CancelRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2)

	status, err := f.svc.ChangeStatus(ctx, ord.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)

	// Create followed by cancel is stock-neutral.
	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 30, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
}

func TestService_DeleteCancelledDoesNotRestoreTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2)
	_, err := f.svc.ChangeStatus(ctx, ord.ID, "CANCELLED")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, ord.ID))

	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 30, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
	assert.Empty(t, f.orders.items)
}

func TestService_DeleteActiveOrderRestores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 3)
	require.NoError(t, f.svc.Delete(ctx, ord.ID))

	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 30, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
}

func TestService_ChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 1)

	status, err := f.svc.ChangeStatus(ctx, ord.ID, "COMPLETED")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)

	// Completion has no stock effect.
	assert.InDelta(t, 9.8, f.ingredients.unitsOf(f.flour.ID), 1e-9)

	// A completed order may still be cancelled, restoring stock.
	_, err = f.svc.ChangeStatus(ctx, ord.ID, "CANCELLED")
	require.NoError(t, err)
	assert.InDelta(t, 10, f.ingredients.unitsOf(f.flour.ID), 1e-9)

	// Nothing leaves CANCELLED.
	_, err = f.svc.ChangeStatus(ctx, ord.ID, "PENDING")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOrderLocked))
}

func TestService_ChangeStatus_InvalidTarget(t *testing.T) {
	f := newFixture(t)
	ord := f.createOrder(t, 1)

	_, err := f.svc.ChangeStatus(context.Background(), ord.ID, "SHIPPED")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidStatus))
}

func TestService_Update_NoOpIsStockNeutral(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2)
	flourBefore := f.ingredients.unitsOf(f.flour.ID)

	updated, err := f.svc.Update(ctx, ord.ID, UpdateInput{
		Lines: []LineInput{{RecipeID: f.cake.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.InDelta(t, flourBefore, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.Equal(t, ord.CustomerName, updated.CustomerName)
	assert.True(t, updated.Total.Equal(ord.Total))
}

func TestService_Update_AppliesNetDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ord := f.createOrder(t, 2) // 0.4 bags, 6 eggs consumed

	updated, err := f.svc.Update(ctx, ord.ID, UpdateInput{
		CustomerName: "Maria OLIVEIRA",
		Lines:        []LineInput{{RecipeID: f.cake.ID, Quantity: 5}},
	})
	require.NoError(t, err)

	// Net +3 cakes: 0.6 more bags, 9 more eggs.
	assert.InDelta(t, 9.0, f.ingredients.unitsOf(f.flour.ID), 1e-9)
	assert.InDelta(t, 15, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
	assert.Equal(t, "maria oliveira", updated.CustomerName)
	assert.True(t, updated.Total.Equal(types.MustMoney("125.00")), "got %s", updated.Total)
}

func TestService_Update_SufficiencyCountsReversal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 10 cakes consume all 30 eggs; editing to 10 again must succeed
	// because the edit first hands the original 30 back.
	ord := f.createOrder(t, 10)
	assert.InDelta(t, 0, f.ingredients.unitsOf(f.eggs.ID), 1e-9)

	_, err := f.svc.Update(ctx, ord.ID, UpdateInput{
		Lines: []LineInput{{RecipeID: f.cake.ID, Quantity: 10}},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0, f.ingredients.unitsOf(f.eggs.ID), 1e-9)

	// 11 is one cake beyond everything the shop has.
	_, err = f.svc.Update(ctx, ord.ID, UpdateInput{
		Lines: []LineInput{{RecipeID: f.cake.ID, Quantity: 11}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// The failed edit must not have moved stock.
	assert.InDelta(t, 0, f.ingredients.unitsOf(f.eggs.ID), 1e-9)
	assert.InDelta(t, 8, f.ingredients.unitsOf(f.flour.ID), 1e-9)
}

func TestService_Update_LockedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, target := range []string{"COMPLETED", "CANCELLED"} {
		ord := f.createOrder(t, 1)
		_, err := f.svc.ChangeStatus(ctx, ord.ID, target)
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, ord.ID, UpdateInput{
			Lines: []LineInput{{RecipeID: f.cake.ID, Quantity: 2}},
		})
		require.Error(t, err, "status %s", target)
		assert.True(t, apperror.IsCode(err, apperror.CodeOrderLocked), "status %s", target)
	}
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Unfiltered empty listing succeeds.
	found, err := f.svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, found)

	f.createOrder(t, 1)

	// Filter is case-folded before matching.
	found, err = f.svc.List(ctx, "MARIA")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	// A filter matching nothing is a NotFound outcome.
	_, err = f.svc.List(ctx, "joana")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_GetByID_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetByID(context.Background(), id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
