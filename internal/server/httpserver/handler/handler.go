package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/telemetry/logger"
)

// SlotManager is the slot surface the API exposes.
// *service.SlotService satisfies it.
type SlotManager interface {
	NumSlots() int
	GetSlot(ctx context.Context, index int) (domain.Record, error)
	SetSlot(ctx context.Context, index int, kind domain.Kind, data []byte) error
	ClearSlot(ctx context.Context, index int) error
	List(ctx context.Context) ([]domain.SlotInfo, error)
	SaveAll(ctx context.Context, dir string) error
	LoadAll(ctx context.Context, dir string) error
}

// Display is the display control surface. *service.DisplayService
// satisfies it.
type Display interface {
	GoBlack(ctx context.Context) error
	GoLive(ctx context.Context) error
	GoSlot(ctx context.Context, index int) error
	GoRoundRobin(ctx context.Context) error
	ProcessLive(ctx context.Context, data []byte) (bool, error)
	Mode() domain.Mode
}

// StateVisitor replays state descriptors. *service.StateRecorder
// satisfies it.
type StateVisitor interface {
	VisitJSON(ctx context.Context, data []byte) error
}

// PreviewSource renders the frame currently on the sink.
// *frame.Preview satisfies it.
type PreviewSource interface {
	PNG() ([]byte, error)
}

// Config holds the handler dependencies.
type Config struct {
	Slots   SlotManager
	Display Display
	State   StateVisitor
	Preview PreviewSource
	Logger  *slog.Logger

	// MaxBodyBytes caps request bodies. Zero means 8MB.
	MaxBodyBytes int64

	// LiveMaxFPS caps accepted live frames per second. Zero disables
	// the cap.
	LiveMaxFPS float64

	// Ready reports whether the server can take traffic. Nil means always.
	Ready func() error
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	slots   SlotManager
	display Display
	state   StateVisitor
	preview PreviewSource
	logger  *slog.Logger
	maxBody int64
	live    *rate.Limiter
	ready   func() error
	mux     *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 8 << 20
	}
	h := &Handler{
		slots:   cfg.Slots,
		display: cfg.Display,
		state:   cfg.State,
		preview: cfg.Preview,
		logger:  cfg.Logger,
		maxBody: cfg.MaxBodyBytes,
		ready:   cfg.Ready,
		mux:     http.NewServeMux(),
	}
	if cfg.LiveMaxFPS > 0 {
		burst := int(cfg.LiveMaxFPS)
		if burst < 1 {
			burst = 1
		}
		h.live = rate.NewLimiter(rate.Limit(cfg.LiveMaxFPS), burst)
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all HTTP routes.
func (h *Handler) registerRoutes() {
	// Health endpoints
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /ping/{id}", h.handlePing)

	// Slot endpoints
	h.mux.HandleFunc("GET /v1/slots", h.handleListSlots)
	h.mux.HandleFunc("GET /v1/slots/{index}", h.handleGetSlot)
	h.mux.HandleFunc("PUT /v1/slots/{index}", h.handlePutSlot)
	h.mux.HandleFunc("POST /v1/slots/{index}", h.handlePutSlot)
	h.mux.HandleFunc("DELETE /v1/slots/{index}", h.handleClearSlot)
	h.mux.HandleFunc("POST /v1/slots/export", h.handleExportSlots)
	h.mux.HandleFunc("POST /v1/slots/import", h.handleImportSlots)

	// Display endpoints
	h.mux.HandleFunc("GET /v1/mode", h.handleGetMode)
	h.mux.HandleFunc("POST /v1/mode/black", h.transition(func(ctx context.Context) error { return h.display.GoBlack(ctx) }))
	h.mux.HandleFunc("POST /v1/mode/live", h.transition(func(ctx context.Context) error { return h.display.GoLive(ctx) }))
	h.mux.HandleFunc("POST /v1/mode/round-robin", h.transition(func(ctx context.Context) error { return h.display.GoRoundRobin(ctx) }))
	h.mux.HandleFunc("POST /v1/mode/slot/{index}", h.handleGoSlot)
	h.mux.HandleFunc("POST /v1/state", h.handleVisitState)
	h.mux.HandleFunc("POST /v1/live", h.handleLive)
	h.mux.HandleFunc("GET /v1/preview", h.handlePreview)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	requestID := getRequestID(r)
	response := NewResponse(requestID, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := getRequestID(r)
	response := NewErrorResponse(requestID, code, message, details)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorCodeToHTTPStatus(de.Code)
		if status >= 500 {
			logger.L(r.Context()).Error("request failed", "error", err)
		}
		var details any
		if de.Details != "" {
			details = de.Details
		}
		h.writeError(w, r, status, de.Code, de.Message, details)
		return
	}

	// Generic internal error
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, domain.ErrInternalServer.Message, nil)
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
// The first three digits of the numeric suffix are the status.
func errorCodeToHTTPStatus(code string) int {
	i := strings.LastIndex(code, "-")
	if i < 0 || len(code)-i-1 < 3 {
		return http.StatusInternalServerError
	}
	status, err := strconv.Atoi(code[i+1 : i+4])
	if err != nil || status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// pathIndex parses the {index} path value.
func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.ErrInvalidIndex.WithDetailsf("%q is not a slot index", raw)
	}
	return index, nil
}

// readBody reads the request body up to the configured limit.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, domain.ErrPayloadTooLarge.WithDetailsf("limit is %d bytes", h.maxBody)
		}
		return nil, domain.ErrBadRequest.WithCause(err)
	}
	return data, nil
}

// getRequestID extracts request ID from context or header.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}
