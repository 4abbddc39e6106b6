package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const (
	recipesTable          = "cat_recipes"
	recipeComponentsTable = "cat_recipe_components"
)

var recipeColumns = []string{
	"id", "name", "production_cost", "created_at", "updated_at",
}

// componentRow carries one composition line with its parent reference.
type componentRow struct {
	RecipeID     id.ID   `db:"recipe_id"`
	LineID       id.ID   `db:"line_id"`
	IngredientID id.ID   `db:"ingredient_id"`
	UnitAmount   float64 `db:"unit_amount"`
	BaseAmount   float64 `db:"base_amount"`
}

// RecipeRepo implements recipe.Repository. Reads always return recipes
// with their composition lines attached.
type RecipeRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ recipe.Repository = (*RecipeRepo)(nil)

// NewRecipeRepo creates a new recipe repository.
func NewRecipeRepo(txManager *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts the recipe and its components.
func (r *RecipeRepo) Create(ctx context.Context, rec *recipe.Recipe) error {
	q := r.builder.Insert(recipesTable).
		Columns(recipeColumns...).
		Values(rec.ID, rec.Name, rec.ProductionCost, rec.CreatedAt, rec.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	return r.insertComponents(ctx, rec.ID, rec.Components)
}

// GetByID retrieves a recipe with its components.
func (r *RecipeRepo) GetByID(ctx context.Context, recipeID id.ID) (*recipe.Recipe, error) {
	q := r.builder.Select(recipeColumns...).
		From(recipesTable).
		Where(squirrel.Eq{"id": recipeID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec recipe.Recipe
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("recipe", recipeID)
		}
		return nil, apperror.NewDatabase(err)
	}

	components, err := r.loadComponents(ctx, []id.ID{recipeID})
	if err != nil {
		return nil, err
	}
	rec.Components = components[recipeID]
	if rec.Components == nil {
		rec.Components = []recipe.Component{}
	}

	return &rec, nil
}

// List retrieves all recipes with components, ordered by name.
func (r *RecipeRepo) List(ctx context.Context) ([]*recipe.Recipe, error) {
	q := r.builder.Select(recipeColumns...).
		From(recipesTable).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []*recipe.Recipe
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &recs, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	if len(recs) == 0 {
		return recs, nil
	}

	ids := make([]id.ID, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}

	components, err := r.loadComponents(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		rec.Components = components[rec.ID]
		if rec.Components == nil {
			rec.Components = []recipe.Component{}
		}
	}

	return recs, nil
}

// Update rewrites the recipe and replaces its components.
func (r *RecipeRepo) Update(ctx context.Context, rec *recipe.Recipe) error {
	q := r.builder.Update(recipesTable).
		Set("name", rec.Name).
		Set("production_cost", rec.ProductionCost).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": rec.ID})

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
		return apperror.NewNotFound("recipe", rec.ID)
	}

	if err := r.deleteComponents(ctx, rec.ID); err != nil {
		return err
	}
	return r.insertComponents(ctx, rec.ID, rec.Components)
}

// Delete removes the recipe and its components.
func (r *RecipeRepo) Delete(ctx context.Context, recipeID id.ID) error {
	if err := r.deleteComponents(ctx, recipeID); err != nil {
		return err
	}

	q := r.builder.Delete(recipesTable).
		Where(squirrel.Eq{"id": recipeID})

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
		return apperror.NewNotFound("recipe", recipeID)
	}
	return nil
}

func (r *RecipeRepo) insertComponents(ctx context.Context, recipeID id.ID, components []recipe.Component) error {
	if len(components) == 0 {
		return nil
	}

	q := r.builder.Insert(recipeComponentsTable).
		Columns("recipe_id", "line_id", "ingredient_id", "unit_amount", "base_amount")
	for _, c := range components {
		q = q.Values(recipeID, c.LineID, c.IngredientID, c.UnitAmount, c.BaseAmount)
	}

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

func (r *RecipeRepo) deleteComponents(ctx context.Context, recipeID id.ID) error {
	q := r.builder.Delete(recipeComponentsTable).
		Where(squirrel.Eq{"recipe_id": recipeID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

func (r *RecipeRepo) loadComponents(ctx context.Context, recipeIDs []id.ID) (map[id.ID][]recipe.Component, error) {
	q := r.builder.Select("recipe_id", "line_id", "ingredient_id", "unit_amount", "base_amount").
		From(recipeComponentsTable).
		Where(squirrel.Eq{"recipe_id": recipeIDs}).
		OrderBy("recipe_id", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []componentRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	out := make(map[id.ID][]recipe.Component, len(recipeIDs))
	for _, row := range rows {
		out[row.RecipeID] = append(out[row.RecipeID], recipe.Component{
			LineID:       row.LineID,
			IngredientID: row.IngredientID,
			UnitAmount:   row.UnitAmount,
			BaseAmount:   row.BaseAmount,
		})
	}

	return out, nil
}
