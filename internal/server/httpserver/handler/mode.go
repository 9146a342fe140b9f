package handler

import (
	"context"
	"net/http"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/telemetry/logger"
)

// handleGetMode handles GET /v1/mode.
func (h *Handler) handleGetMode(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, modeResponse(h.display.Mode()))
}

// transition wraps a mode change that takes no arguments.
func (h *Handler) transition(fn func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r.Context()); err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		h.writeTransition(w, r)
	}
}

// handleGoSlot handles POST /v1/mode/slot/{index}.
func (h *Handler) handleGoSlot(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.display.GoSlot(r.Context(), index); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeTransition(w, r)
}

// handleVisitState handles POST /v1/state.
func (h *Handler) handleVisitState(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.state.VisitJSON(r.Context(), data); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeTransition(w, r)
}

func (h *Handler) writeTransition(w http.ResponseWriter, r *http.Request) {
	m := h.display.Mode()
	logger.L(r.Context()).Info("display transition", "mode", m.String())
	h.writeJSON(w, r, http.StatusOK, modeResponse(m))
}

// handleLive handles POST /v1/live.
//
// Frames above the configured rate are rejected with 429 before decoding.
func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	if h.live != nil && !h.live.Allow() {
		w.Header().Set("Retry-After", "1")
		h.handleServiceError(w, r, domain.ErrRateLimited.WithDetails("live frame rate exceeded"))
		return
	}
	data, err := h.readBody(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	shown, err := h.display.ProcessLive(r.Context(), data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, LiveResponse{Shown: shown})
}

// handlePreview handles GET /v1/preview.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if h.preview == nil {
		h.writeError(w, r, http.StatusNotFound, "LW-SYS-4040", "preview disabled", nil)
		return
	}
	data, err := h.preview.PNG()
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInternalServer.WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
