package dto

import (
	"bakehouse/internal/core/apperror"
	"bakehouse/internal/core/id"
	"bakehouse/internal/domain/orders"
)

// OrderLineRequest is one requested (recipe, quantity) pair.
type OrderLineRequest struct {
	RecipeID string `json:"recipeId"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Lines         []OrderLineRequest `json:"lines"`
}

// ToInput converts the request to a domain input, parsing recipe IDs.
func (r CreateOrderRequest) ToInput() (orders.CreateInput, error) {
	lines, err := parseLines(r.Lines)
	if err != nil {
		return orders.CreateInput{}, err
	}
	return orders.CreateInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Lines:         lines,
	}, nil
}

// UpdateOrderRequest is the payload for editing an order. Empty
// customer fields keep the stored values.
type UpdateOrderRequest struct {
	CustomerName  string             `json:"customerName"`
	CustomerPhone string             `json:"customerPhone"`
	Lines         []OrderLineRequest `json:"lines"`
}

// ToInput converts the request to a domain input, parsing recipe IDs.
func (r UpdateOrderRequest) ToInput() (orders.UpdateInput, error) {
	lines, err := parseLines(r.Lines)
	if err != nil {
		return orders.UpdateInput{}, err
	}
	return orders.UpdateInput{
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Lines:         lines,
	}, nil
}

// ChangeStatusRequest is the payload for a status transition.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

func parseLines(reqs []OrderLineRequest) ([]orders.LineInput, error) {
	lines := make([]orders.LineInput, len(reqs))
	for i, l := range reqs {
		recipeID, err := id.Parse(l.RecipeID)
		if err != nil {
			return nil, apperror.NewValidation("invalid recipe id").
				WithDetail("lineNo", i+1).
				WithDetail("recipeId", l.RecipeID)
		}
		lines[i] = orders.LineInput{RecipeID: recipeID, Quantity: l.Quantity}
	}
	return lines, nil
}
