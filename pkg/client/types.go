package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Slot kinds as reported by the server.
const (
	KindEmpty     = "empty"
	KindImage     = "image"
	KindAnimation = "animation"
	KindText      = "text"
)

// SlotInfo summarizes one slot.
type SlotInfo struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"`
	Size   int    `json:"size"`
	Digest string `json:"digest,omitempty"`
}

// SlotList is the result of ListSlots.
type SlotList struct {
	Slots []SlotInfo `json:"slots"`
	Total int        `json:"total"`
}

// Slot is a downloaded slot.
type Slot struct {
	Index int
	Kind  string
	Data  []byte
	ETag  string
}

// Empty reports whether the slot holds no content.
func (s *Slot) Empty() bool {
	return s.Kind == KindEmpty || len(s.Data) == 0
}

// Descriptor is the serialized form of a display mode.
type Descriptor struct {
	Mode string `json:"mode"`
	Slot *int   `json:"slot,omitempty"`
}

// ModeStatus is the display mode reported by the server.
type ModeStatus struct {
	Mode       string     `json:"mode"`
	Descriptor Descriptor `json:"descriptor"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	Details   any
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != nil {
		msg += fmt.Sprintf(": %v", e.Details)
	}
	return msg
}

// ErrorCode returns the API error code carried by err, or "".
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   any             `json:"details"`
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		Status:    resp.StatusCode,
		Code:      resp.Header.Get("X-Error-Code"),
		RequestID: resp.Header.Get("X-Request-ID"),
		Message:   http.StatusText(resp.StatusCode),
	}
	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err == nil {
		if env.Code != "" {
			apiErr.Code = env.Code
		}
		if env.Message != "" {
			apiErr.Message = env.Message
		}
		if env.RequestID != "" {
			apiErr.RequestID = env.RequestID
		}
		apiErr.Details = env.Details
	}
	if apiErr.Code == "" {
		apiErr.Code = fmt.Sprintf("HTTP-%d", resp.StatusCode)
	}
	return apiErr
}
