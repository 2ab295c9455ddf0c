// Package dto defines request and response shapes for the HTTP API.
package dto

// SuccessResponse is a generic success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// IDResponse returns just the created entity id.
type IDResponse struct {
	ID string `json:"id"`
}
