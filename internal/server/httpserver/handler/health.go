package handler

import (
	"net/http"
	"time"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			h.writeError(w, r, http.StatusServiceUnavailable, "LW-SYS-5030", "not ready", err.Error())
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handlePing handles GET /ping/{id}. Clients use it to check connectivity.
func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, PingResponse{
		ID:   r.PathValue("id"),
		Time: time.Now().UTC(),
	})
}
