// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const ingredientsTable = "cat_ingredients"

var ingredientColumns = []string{
	"id", "name", "unit", "units_in_stock", "weight_per_unit",
	"created_at", "updated_at",
}

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ingredient.Repository = (*IngredientRepo)(nil)

// NewIngredientRepo creates a new ingredient repository.
func NewIngredientRepo(txManager *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new ingredient.
func (r *IngredientRepo) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	q := r.builder.Insert(ingredientsTable).
		Columns(ingredientColumns...).
		Values(ing.ID, ing.Name, ing.Unit, ing.UnitsInStock, ing.WeightPerUnit,
			ing.CreatedAt, ing.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// GetByID retrieves an ingredient by ID.
func (r *IngredientRepo) GetByID(ctx context.Context, ingID id.ID) (*ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientsTable).
		Where(squirrel.Eq{"id": ingID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ing ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ing, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("ingredient", ingID)
		}
		return nil, apperror.NewDatabase(err)
	}

	return &ing, nil
}

// List retrieves all ingredients ordered by name.
func (r *IngredientRepo) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	q := r.builder.Select(ingredientColumns...).
		From(ingredientsTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ings []*ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ings, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	return ings, nil
}

// Update rewrites the ingredient's mutable fields.
func (r *IngredientRepo) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	q := r.builder.Update(ingredientsTable).
		Set("name", ing.Name).
		Set("unit", ing.Unit).
		Set("units_in_stock", ing.UnitsInStock).
		Set("weight_per_unit", ing.WeightPerUnit).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": ing.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ing.ID)
	}
	return nil
}

// Delete removes the ingredient.
func (r *IngredientRepo) Delete(ctx context.Context, ingID id.ID) error {
	q := r.builder.Delete(ingredientsTable).
		Where(squirrel.Eq{"id": ingID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("ingredient", ingID)
	}
	return nil
}

// GetManyForUpdate loads ingredients with row locks. Rows stay locked
// until the surrounding transaction commits, serializing concurrent
// order mutations that touch the same ingredients.
func (r *IngredientRepo) GetManyForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*ingredient.Ingredient, error) {
	if len(ids) == 0 {
		return map[id.ID]*ingredient.Ingredient{}, nil
	}

	q := r.builder.Select(ingredientColumns...).
		From(ingredientsTable).
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id"). // fixed lock order prevents deadlocks between orders
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ings []*ingredient.Ingredient
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ings, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	out := make(map[id.ID]*ingredient.Ingredient, len(ings))
	for _, ing := range ings {
		out[ing.ID] = ing
	}

	for _, ingID := range ids {
		if _, ok := out[ingID]; !ok {
			return nil, apperror.NewNotFound("ingredient", ingID)
		}
	}

	return out, nil
}

// AdjustUnits shifts units_in_stock by delta. The WHERE guard makes the
// adjustment and its non-negativity check one atomic statement; a
// rejected adjustment affects zero rows and aborts the caller's
// transaction.
func (r *IngredientRepo) AdjustUnits(ctx context.Context, ingID id.ID, delta float64) error {
	sql := `
		UPDATE cat_ingredients
		SET units_in_stock = units_in_stock + $1, updated_at = $2
		WHERE id = $3 AND units_in_stock + $1 >= 0
	`

	querier := r.txManager.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, delta, time.Now().UTC(), ingID)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewInsufficientStock().
			WithDetail("ingredientId", ingID).
			WithDetail("delta", delta)
	}
	return nil
}
