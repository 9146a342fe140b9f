package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("LW-TEST-1000", "test message"),
			expected: "[LW-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("LW-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[LW-TEST-1001] test message: extra info",
		},
		{
			name:     "error with cause",
			err:      NewDomainError("LW-TEST-1002", "test message").WithCause(fmt.Errorf("disk full")),
			expected: "[LW-TEST-1002] test message: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("LW-TEST-1000", "message 1")
	err2 := NewDomainError("LW-TEST-1000", "message 2")
	err3 := NewDomainError("LW-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := ErrStoreWriteFailed.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if errors.Unwrap(ErrStoreWriteFailed) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_CopiesAreIndependent(t *testing.T) {
	withDetails := ErrInvalidIndex.WithDetails("index 9")
	if ErrInvalidIndex.Details != "" {
		t.Error("WithDetails should not modify the sentinel")
	}
	if withDetails.Code != ErrInvalidIndex.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, ErrInvalidIndex.Code)
	}

	withCause := ErrContentCorrupt.WithCause(fmt.Errorf("bad gif"))
	if ErrContentCorrupt.Cause != nil {
		t.Error("WithCause should not modify the sentinel")
	}
	if !errors.Is(withCause, ErrContentCorrupt) {
		t.Error("errors.Is should match the sentinel after WithCause")
	}
}

func TestIsDomainError(t *testing.T) {
	wrapped := fmt.Errorf("wrapped: %w", ErrSlotUnavailable)

	if !IsDomainError(wrapped, "LW-SLOT-4041") {
		t.Error("IsDomainError should work with wrapped errors")
	}
	if IsDomainError(wrapped, "LW-SLOT-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if !IsDomainError(wrapped, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(fmt.Errorf("regular error"), "") {
		t.Error("IsDomainError should return false for non-DomainError")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrInvalidStateDescriptor, "LW-STATE-4001"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrRenderStalled), "LW-DISP-5001"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}
