package claude

import (
	llmbridge "github.com/llmbridge/llmbridge-go"
)

// Vendor error type strings reported inside error events and error response
// bodies.
const (
	ErrorTypeOverloaded     = "overloaded_error"
	ErrorTypeAPI            = "api_error"
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeAuthentication = "authentication_error"
)

// ErrorDetail is the error payload shape the API uses both in stream error
// events and in non-2xx response bodies.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Normalize wraps the vendor payload in a *llmbridge.VendorError carrying the
// sentinel for its classification. Unrecognized types map to the internal
// sentinel, the dialect's own catch-all.
func (e ErrorDetail) Normalize() *llmbridge.VendorError {
	var sentinel error
	switch e.Type {
	case ErrorTypeOverloaded:
		sentinel = llmbridge.ErrOverloaded
	case ErrorTypeInvalidRequest:
		sentinel = llmbridge.ErrBadRequest
	case ErrorTypeAuthentication:
		sentinel = llmbridge.ErrUnauthorized
	default: // api_error and anything new
		sentinel = llmbridge.ErrInternal
	}
	return &llmbridge.VendorError{
		Type:    e.Type,
		Message: e.Message,
		Err:     sentinel,
	}
}
