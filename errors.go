package llmbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrOverloaded indicates the provider is temporarily over capacity.
	ErrOverloaded = errors.New("llmbridge: provider overloaded")

	// ErrInternal indicates a provider-side internal failure.
	ErrInternal = errors.New("llmbridge: provider internal error")

	// ErrBadRequest indicates the provider rejected the request as malformed.
	ErrBadRequest = errors.New("llmbridge: invalid request")

	// ErrUnauthorized indicates the API key is missing, malformed, or revoked.
	ErrUnauthorized = errors.New("llmbridge: unauthorized")

	// ErrDecode indicates a wire payload could not be decoded into a known
	// event or response shape.
	ErrDecode = errors.New("llmbridge: undecodable payload")

	// ErrToolArguments indicates a streamed tool call's accumulated argument
	// fragments did not form a valid JSON object.
	ErrToolArguments = errors.New("llmbridge: malformed tool arguments")

	// ErrAlreadyFinalized indicates a translator was used after Finalize.
	ErrAlreadyFinalized = errors.New("llmbridge: translator already finalized")
)

// VendorError represents an error reported inside a vendor response or stream,
// as opposed to a transport failure. It wraps the sentinel matching the
// vendor's error classification.
type VendorError struct {
	Type    string // The vendor's wire error type (e.g. "overloaded_error")
	Message string // Error message from the vendor
	Err     error  // Wrapped sentinel (ErrOverloaded, ErrInternal, ...)
}

func (e *VendorError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("vendor error (%s): %s", e.Type, e.Message)
	}
	return fmt.Sprintf("vendor error: %s", e.Message)
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

// DecodeError represents a payload that could not be decoded into a known
// shape. Raw holds the offending bytes for diagnostics.
type DecodeError struct {
	Reason string // Human-readable explanation
	Raw    []byte // The payload that failed to decode
	Err    error  // Wrapped cause (json error, or nil for shape mismatches)
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode failed: %s (%v)", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode failed: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDecode
}

// Is lets errors.Is(err, ErrDecode) match regardless of the wrapped cause.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

// ToolArgumentError represents a streamed tool call whose argument fragments,
// once concatenated, did not parse as a JSON object. The call is dropped from
// finalized content; the raw fragments survive here for recovery or logging.
type ToolArgumentError struct {
	ID   string // The tool call id from the opening event
	Name string // The tool name
	Raw  string // The concatenated argument fragments as received
	Err  error  // Wrapped parse error
}

func (e *ToolArgumentError) Error() string {
	return fmt.Sprintf("tool call '%s' (id %s): arguments are not a JSON object: %q", e.Name, e.ID, e.Raw)
}

func (e *ToolArgumentError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrToolArguments
}

// Is lets errors.Is(err, ErrToolArguments) match regardless of the wrapped
// cause.
func (e *ToolArgumentError) Is(target error) bool {
	return target == ErrToolArguments
}

// IsRetryable checks if an error is potentially retryable.
// Overload and internal provider failures are; everything else requires a
// request change or operator action.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrOverloaded) || errors.Is(err, ErrInternal)
}

// IsRecoverable checks if a translator error leaves the stream usable.
// A malformed tool call loses that one call; the translator keeps consuming
// and Finalize still works.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrToolArguments)
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrUnauthorized)
}
