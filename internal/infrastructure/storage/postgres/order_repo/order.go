// Package order_repo provides the PostgreSQL implementation of the
// order repository.
package order_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/types"
	"bakehouse/internal/domain/orders"
	"bakehouse/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "doc_orders"
	orderLinesTable = "doc_order_lines"
)

var orderColumns = []string{
	"id", "customer_name", "customer_phone", "status", "total",
	"created_at", "updated_at",
}

// lineRow carries one order line with its parent reference.
type lineRow struct {
	OrderID  id.ID `db:"order_id"`
	LineID   id.ID `db:"line_id"`
	RecipeID id.ID `db:"recipe_id"`
	Quantity int   `db:"quantity"`
}

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create persists the order record and its lines.
func (r *OrderRepo) Create(ctx context.Context, ord *orders.Order) error {
	q := r.builder.Insert(ordersTable).
		Columns(orderColumns...).
		Values(ord.ID, ord.CustomerName, ord.CustomerPhone, ord.Status, ord.Total,
			ord.CreatedAt, ord.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	return r.insertLines(ctx, ord.ID, ord.Lines)
}

// GetByID returns the order with its lines.
func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ord orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ord, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, apperror.NewDatabase(err)
	}

	lines, err := r.loadLines(ctx, []id.ID{orderID})
	if err != nil {
		return nil, err
	}
	ord.Lines = lines[orderID]
	if ord.Lines == nil {
		ord.Lines = []orders.Line{}
	}

	return &ord, nil
}

// List returns orders with lines, newest first, optionally filtered by
// a case-insensitive substring of the customer name. Names are already
// case-folded on write, so ILIKE on the folded filter is a plain
// substring match.
func (r *OrderRepo) List(ctx context.Context, nameFilter string) ([]*orders.Order, error) {
	q := r.builder.Select(orderColumns...).
		From(ordersTable).
		OrderBy("created_at DESC")

	if nameFilter != "" {
		q = q.Where(squirrel.ILike{"customer_name": "%" + nameFilter + "%"})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ords []*orders.Order
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &ords, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	if len(ords) == 0 {
		return ords, nil
	}

	ids := make([]id.ID, len(ords))
	for i, ord := range ords {
		ids[i] = ord.ID
	}

	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, ord := range ords {
		ord.Lines = lines[ord.ID]
		if ord.Lines == nil {
			ord.Lines = []orders.Line{}
		}
	}

	return ords, nil
}

// ReplaceLines deletes and recreates the order's lines.
func (r *OrderRepo) ReplaceLines(ctx context.Context, orderID id.ID, lines []orders.Line) error {
	q := r.builder.Delete(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	return r.insertLines(ctx, orderID, lines)
}

// UpdateFields rewrites customer fields and the cached total.
func (r *OrderRepo) UpdateFields(ctx context.Context, orderID id.ID, customerName, customerPhone string, total types.Money) error {
	q := r.builder.Update(ordersTable).
		Set("customer_name", customerName).
		Set("customer_phone", customerPhone).
		Set("total", total).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": orderID})

	return r.execExpectingRow(ctx, q, orderID)
}

// UpdateStatus rewrites the order status.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.Status) error {
	q := r.builder.Update(ordersTable).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": orderID})

	return r.execExpectingRow(ctx, q, orderID)
}

// Delete removes the order and its lines.
func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	lq := r.builder.Delete(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderID})

	sql, args, err := lq.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	q := r.builder.Delete(ordersTable).
		Where(squirrel.Eq{"id": orderID})

	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

func (r *OrderRepo) execExpectingRow(ctx context.Context, q squirrel.UpdateBuilder, orderID id.ID) error {
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
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

func (r *OrderRepo) insertLines(ctx context.Context, orderID id.ID, lines []orders.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(orderLinesTable).
		Columns("order_id", "line_id", "recipe_id", "quantity")
	for _, l := range lines {
		q = q.Values(orderID, l.LineID, l.RecipeID, l.Quantity)
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

func (r *OrderRepo) loadLines(ctx context.Context, orderIDs []id.ID) (map[id.ID][]orders.Line, error) {
	q := r.builder.Select("order_id", "line_id", "recipe_id", "quantity").
		From(orderLinesTable).
		Where(squirrel.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "line_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []lineRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}

	out := make(map[id.ID][]orders.Line, len(orderIDs))
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], orders.Line{
			LineID:   row.LineID,
			RecipeID: row.RecipeID,
			Quantity: row.Quantity,
		})
	}

	return out, nil
}
