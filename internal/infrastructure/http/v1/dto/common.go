// Package dto defines HTTP request and response shapes.
package dto

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns a created entity's identifier.
type IDResponse struct {
	ID string `json:"id"`
}
