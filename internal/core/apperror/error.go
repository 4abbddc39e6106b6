// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (422)
	CodeInsufficientStock     = "INSUFFICIENT_STOCK"
	CodeMissingProductionCost = "MISSING_PRODUCTION_COST"
	CodeOrderLocked           = "ORDER_LOCKED"
	CodeInvalidStatus         = "INVALID_STATUS"

	// Corrupted reference data (500): a stocked ingredient whose
	// weight-per-unit cannot produce a physical unit count.
	CodeInvalidUnitConfig = "INVALID_UNIT_CONFIGURATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict = "CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, shortages, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInsufficientStock creates a stock shortage error (422).
// The shortage list is attached by the caller via WithDetail("shortages", ...).
func NewInsufficientStock() *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock to fulfil the order",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewMissingProductionCost signals a recipe without a production cost (422).
func NewMissingProductionCost(recipeName string) *AppError {
	return &AppError{
		Code:       CodeMissingProductionCost,
		Message:    fmt.Sprintf("recipe %q has no production cost defined", recipeName),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"recipe": recipeName},
	}
}

// NewOrderLocked signals a mutation attempt on a terminal-status order (422).
func NewOrderLocked(status string) *AppError {
	return &AppError{
		Code:       CodeOrderLocked,
		Message:    fmt.Sprintf("orders with status %s cannot be modified", status),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"status": status},
	}
}

// NewInvalidStatus signals an unrecognized target status (400).
func NewInvalidStatus(status string) *AppError {
	return &AppError{
		Code:       CodeInvalidStatus,
		Message:    fmt.Sprintf("unknown order status %q", status),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"status": status},
	}
}

// NewInvalidUnitConfig signals corrupted reference data: an ingredient
// whose base quantity per physical unit is zero, negative or not finite.
// Surfaced as a server-side fault, not a user input problem.
func NewInvalidUnitConfig(ingredientName string, perUnit float64) *AppError {
	return &AppError{
		Code:       CodeInvalidUnitConfig,
		Message:    fmt.Sprintf("invalid base quantity per unit (%v) for ingredient %q", perUnit, ingredientName),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"ingredient": ingredientName, "per_unit": perUnit},
	}
}

// NewDatabase creates a store failure error (500).
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsCode checks if error carries the given code.
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
