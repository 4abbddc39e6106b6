package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/core/tx"
	"bakehouse/internal/domain/catalogs/ingredient"
	"bakehouse/internal/domain/catalogs/recipe"
	"bakehouse/pkg/logger"
)

// Auditor records order mutations. Implemented by the postgres audit
// service; nil disables auditing.
type Auditor interface {
	LogChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// Service coordinates the order lifecycle: it composes demand
// aggregation, reversal of prior effects, sufficiency checks and atomic
// stock application across create, edit, status change and delete. The
// service is request-scoped and stateless; the store's transaction is
// the sole concurrency boundary.
type Service struct {
	orders      Repository
	recipes     recipe.Repository
	ingredients ingredient.Repository
	txManager   tx.Manager
	audit       Auditor
}

// NewService creates a new order service. audit may be nil.
func NewService(
	orders Repository,
	recipes recipe.Repository,
	ingredients ingredient.Repository,
	txManager tx.Manager,
	audit Auditor,
) *Service {
	return &Service{
		orders:      orders,
		recipes:     recipes,
		ingredients: ingredients,
		txManager:   txManager,
		audit:       audit,
	}
}

// Create validates the request, checks stock sufficiency and atomically
// consumes ingredients while persisting the new PENDING order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	var ord *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		recipes, stock, err := s.resolve(ctx, in.Lines)
		if err != nil {
			return err
		}

		demand, total, err := BuildDemand(in.Lines, recipes, stock)
		if err != nil {
			return err
		}

		if err := s.requireSufficient(demand, stock); err != nil {
			return err
		}

		if err := s.applyLedger(ctx, demand, stock); err != nil {
			return err
		}

		now := time.Now().UTC()
		ord = &Order{
			ID:            id.New(),
			CustomerName:  strings.ToLower(in.CustomerName),
			CustomerPhone: in.CustomerPhone,
			Status:        StatusPending,
			Total:         total,
			CreatedAt:     now,
			UpdatedAt:     now,
			Lines:         newLines(in.Lines),
		}

		if err := s.orders.Create(ctx, ord); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		return s.logAudit(ctx, ord.ID, "create", map[string]any{
			"customer": ord.CustomerName,
			"total":    ord.Total,
			"lines":    len(ord.Lines),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order created", "order_id", ord.ID, "total", ord.Total)
	return ord, nil
}

// GetByID returns one order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

// List returns orders, optionally filtered by a case-insensitive
// substring of the customer name. A supplied filter matching nothing is
// a NotFound outcome; an unfiltered empty listing succeeds.
func (s *Service) List(ctx context.Context, nameFilter string) ([]*Order, error) {
	filter := strings.ToLower(strings.TrimSpace(nameFilter))
	found, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if filter != "" && len(found) == 0 {
		return nil, apperror.NewNotFound("orders", filter).
			WithDetail("customer", filter)
	}
	return found, nil
}

// Update replaces an order's line items and customer fields. The prior
// ledger is reversed and the new one consumed inside one transaction;
// sufficiency is checked against stock as it would be after the
// reversal. If the check fails the reversal is discarded with the rest.
func (s *Service) Update(ctx context.Context, orderID id.ID, in UpdateInput) (*Order, error) {
	if err := in.Validate(ctx); err != nil {
		return nil, err
	}

	var ord *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !existing.Status.CanEdit() {
			return apperror.NewOrderLocked(string(existing.Status))
		}

		oldLines := buildLines(existing.Lines)
		recipes, stock, err := s.resolve(ctx, oldLines, in.Lines)
		if err != nil {
			return err
		}

		oldLedger, err := BuildLedger(oldLines, recipes, stock)
		if err != nil {
			return err
		}

		newLedger, total, err := BuildDemand(in.Lines, recipes, stock)
		if err != nil {
			return err
		}

		// Check against the post-reversal view without a second store
		// round trip: restore the old ledger onto a copy of the snapshot.
		restored, err := restoredSnapshot(stock, oldLedger)
		if err != nil {
			return err
		}
		if err := s.requireSufficient(newLedger, restored); err != nil {
			return err
		}

		// One combined set of operations: reversal ⊕ consumption.
		if err := s.applyLedger(ctx, oldLedger.Negate().Merge(newLedger), stock); err != nil {
			return err
		}

		name := existing.CustomerName
		if strings.TrimSpace(in.CustomerName) != "" {
			name = strings.ToLower(in.CustomerName)
		}
		phone := existing.CustomerPhone
		if strings.TrimSpace(in.CustomerPhone) != "" {
			phone = in.CustomerPhone
		}

		lines := newLines(in.Lines)
		if err := s.orders.ReplaceLines(ctx, orderID, lines); err != nil {
			return fmt.Errorf("replace lines: %w", err)
		}
		if err := s.orders.UpdateFields(ctx, orderID, name, phone, total); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		ord = existing
		ord.CustomerName = name
		ord.CustomerPhone = phone
		ord.Total = total
		ord.Lines = lines
		ord.UpdatedAt = time.Now().UTC()

		return s.logAudit(ctx, orderID, "update", map[string]any{
			"customer": name,
			"total":    total,
			"lines":    len(lines),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order updated", "order_id", orderID, "total", ord.Total)
	return ord, nil
}

// ChangeStatus transitions the order to target. Moving into CANCELLED
// restores the order's full ledger atomically with the status write; any
// other recognized target has no stock effect. Role policy is enforced
// by the caller; only state-machine legality is checked here.
func (s *Service) ChangeStatus(ctx context.Context, orderID id.ID, target string) (Status, error) {
	status, err := ParseStatus(target)
	if err != nil {
		return "", err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !existing.Status.CanChangeStatus() {
			return apperror.NewOrderLocked(string(existing.Status))
		}

		if status == StatusCancelled {
			if err := s.restoreLedger(ctx, existing); err != nil {
				return err
			}
		}

		if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		return s.logAudit(ctx, orderID, "status", map[string]any{
			"from": existing.Status,
			"to":   status,
		})
	})
	if err != nil {
		return "", err
	}

	logger.Info(ctx, "order status changed", "order_id", orderID, "status", status)
	return status, nil
}

// Delete removes the order after restoring its stock effects. A
// CANCELLED order was already restored at cancellation and is deleted
// without touching stock.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}

		if existing.Status != StatusCancelled {
			if err := s.restoreLedger(ctx, existing); err != nil {
				return err
			}
		}

		if err := s.orders.Delete(ctx, orderID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}

		return s.logAudit(ctx, orderID, "delete", map[string]any{
			"status": existing.Status,
		})
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order deleted", "order_id", orderID)
	return nil
}

// --- internals ---

// resolve loads every recipe referenced by the line sets and locks every
// ingredient their compositions touch. Locking before the sufficiency
// check closes the check-then-act window between concurrent orders.
func (s *Service) resolve(ctx context.Context, lineSets ...[]LineInput) (map[id.ID]*recipe.Recipe, map[id.ID]*ingredient.Ingredient, error) {
	recipes := make(map[id.ID]*recipe.Recipe)
	for _, lines := range lineSets {
		for _, line := range lines {
			if _, ok := recipes[line.RecipeID]; ok {
				continue
			}
			rec, err := s.recipes.GetByID(ctx, line.RecipeID)
			if err != nil {
				return nil, nil, err
			}
			recipes[line.RecipeID] = rec
		}
	}

	seen := make(map[id.ID]struct{})
	var ingredientIDs []id.ID
	for _, rec := range recipes {
		for _, comp := range rec.Components {
			if _, ok := seen[comp.IngredientID]; ok {
				continue
			}
			seen[comp.IngredientID] = struct{}{}
			ingredientIDs = append(ingredientIDs, comp.IngredientID)
		}
	}

	stock, err := s.ingredients.GetManyForUpdate(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}

	return recipes, stock, nil
}

func (s *Service) requireSufficient(demand Ledger, stock map[id.ID]*ingredient.Ingredient) error {
	shortages, err := CheckSufficiency(demand, stock)
	if err != nil {
		return err
	}
	if len(shortages) > 0 {
		return apperror.NewInsufficientStock().WithDetail("shortages", shortages)
	}
	return nil
}

func (s *Service) applyLedger(ctx context.Context, l Ledger, stock map[id.ID]*ingredient.Ingredient) error {
	adjustments, err := PlanAdjustments(l, stock)
	if err != nil {
		return err
	}
	for _, adj := range adjustments {
		if err := s.ingredients.AdjustUnits(ctx, adj.IngredientID, adj.DeltaUnits); err != nil {
			return fmt.Errorf("adjust stock for %s: %w", adj.IngredientID, err)
		}
	}
	return nil
}

// restoreLedger re-credits every ingredient consumed by the order.
func (s *Service) restoreLedger(ctx context.Context, ord *Order) error {
	lines := buildLines(ord.Lines)
	recipes, stock, err := s.resolve(ctx, lines)
	if err != nil {
		return err
	}

	ledger, err := BuildLedger(lines, recipes, stock)
	if err != nil {
		return err
	}

	return s.applyLedger(ctx, ledger.Negate(), stock)
}

// restoredSnapshot returns a copy of stock with the given consumption
// ledger credited back, the view the sufficiency check must see during
// an edit.
func restoredSnapshot(stock map[id.ID]*ingredient.Ingredient, consumed Ledger) (map[id.ID]*ingredient.Ingredient, error) {
	out := make(map[id.ID]*ingredient.Ingredient, len(stock))
	for ingID, ing := range stock {
		copied := *ing
		out[ingID] = &copied
	}

	restoreAdjustments, err := PlanAdjustments(consumed.Negate(), out)
	if err != nil {
		return nil, err
	}
	for _, adj := range restoreAdjustments {
		out[adj.IngredientID].UnitsInStock += adj.DeltaUnits
	}

	return out, nil
}

func newLines(inputs []LineInput) []Line {
	lines := make([]Line, len(inputs))
	for i, in := range inputs {
		lines[i] = Line{
			LineID:   id.New(),
			RecipeID: in.RecipeID,
			Quantity: in.Quantity,
		}
	}
	return lines
}

func (s *Service) logAudit(ctx context.Context, orderID id.ID, action string, changes map[string]any) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.LogChange(ctx, "order", orderID, action, changes); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}
