// Package domain defines the core domain models for ledwall.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow the format LW-<AREA>-<NNNN> where the first three digits mirror
// the HTTP status the transport layer reports.
type DomainError struct {
	Code    string // Error code (e.g., "LW-SLOT-4041")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Slot Errors (SLOT)
// ============================================================================

var (
	// ErrInvalidIndex indicates a slot index outside [0, N).
	ErrInvalidIndex = NewDomainError("LW-SLOT-4001", "slot index out of range")

	// ErrInvalidKind indicates an unknown content kind or a record whose
	// payload does not match its kind.
	ErrInvalidKind = NewDomainError("LW-SLOT-4002", "invalid slot content")

	// ErrSlotUnavailable indicates the slot is empty or its backing read failed.
	ErrSlotUnavailable = NewDomainError("LW-SLOT-4041", "slot unavailable")

	// ErrContentCorrupt indicates the codec failed on stored bytes.
	ErrContentCorrupt = NewDomainError("LW-SLOT-4221", "slot content corrupt")

	// ErrStoreWriteFailed indicates the slot store rejected a write.
	ErrStoreWriteFailed = NewDomainError("LW-SLOT-5031", "slot store write failed")
)

// ============================================================================
// Display Errors (DISP, STATE)
// ============================================================================

var (
	// ErrInvalidStateDescriptor indicates malformed replay input.
	ErrInvalidStateDescriptor = NewDomainError("LW-STATE-4001", "invalid state descriptor")

	// ErrRenderStalled indicates a render task did not stop within the join
	// timeout. The supervisor refuses further transitions once it is set.
	ErrRenderStalled = NewDomainError("LW-DISP-5001", "render task did not stop")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("LW-SYS-5000", "internal server error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("LW-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("LW-SYS-4290", "too many requests")

	// ErrPayloadTooLarge indicates an upload above the configured limit.
	ErrPayloadTooLarge = NewDomainError("LW-SYS-4130", "payload too large")
)
