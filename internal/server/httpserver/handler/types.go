package handler

import (
	"time"

	"github.com/yndnr/ledwall-go/internal/core/domain"
)

// Response is the standard API response envelope.
// All JSON responses use this format except /metrics, slot bodies and the preview.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"` // Additional error details
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ListSlotsResponse is the response body for GET /v1/slots.
type ListSlotsResponse struct {
	Slots []domain.SlotInfo `json:"slots"`
	Total int               `json:"total"`
}

// DirRequest is the request body for POST /v1/slots/export and /v1/slots/import.
type DirRequest struct {
	Dir string `json:"dir"`
}

// ModeResponse is the response body for GET /v1/mode and the transition routes.
type ModeResponse struct {
	Mode       string            `json:"mode"`
	Descriptor domain.Descriptor `json:"descriptor"`
}

// LiveResponse is the response body for POST /v1/live.
type LiveResponse struct {
	Shown bool `json:"shown"`
}

// PingResponse is the response body for GET /ping/{id}.
type PingResponse struct {
	ID   string    `json:"id"`
	Time time.Time `json:"time"`
}

func modeResponse(m domain.Mode) ModeResponse {
	return ModeResponse{Mode: m.String(), Descriptor: m.Descriptor()}
}
