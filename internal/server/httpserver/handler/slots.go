package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/ledwall-go/internal/core/domain"
	"github.com/yndnr/ledwall-go/internal/telemetry/logger"
)

// handleListSlots handles GET /v1/slots.
func (h *Handler) handleListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.slots.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ListSlotsResponse{Slots: slots, Total: h.slots.NumSlots()})
}

// handleGetSlot handles GET /v1/slots/{index}.
//
// The body is the raw slot payload. Empty slots answer 204.
func (h *Handler) handleGetSlot(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	rec, err := h.slots.GetSlot(r.Context(), index)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Slot-Kind", rec.Kind.String())
	if rec.IsEmpty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	etag := strconv.Quote(rec.Digest())
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", rec.Kind.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(rec.Data)
	}
}

// handlePutSlot handles PUT and POST /v1/slots/{index}?kind=.
func (h *Handler) handlePutSlot(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	kind, err := domain.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	data, err := h.readBody(w, r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.slots.SetSlot(r.Context(), index, kind, data); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("slot stored", "slot", index, "kind", kind.String(), "size", len(data))

	rec, err := domain.NewRecord(kind, data)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, rec.Info(index))
}

// handleClearSlot handles DELETE /v1/slots/{index}.
func (h *Handler) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if err := h.slots.ClearSlot(r.Context(), index); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	logger.L(r.Context()).Info("slot cleared", "slot", index)
	h.writeJSON(w, r, http.StatusOK, domain.EmptyRecord().Info(index))
}

// handleExportSlots handles POST /v1/slots/export.
func (h *Handler) handleExportSlots(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDir(w, r)
	if !ok {
		return
	}
	if err := h.slots.SaveAll(r.Context(), req.Dir); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	logger.L(r.Context()).Info("slots exported", "dir", req.Dir)
	h.writeJSON(w, r, http.StatusOK, req)
}

// handleImportSlots handles POST /v1/slots/import.
func (h *Handler) handleImportSlots(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeDir(w, r)
	if !ok {
		return
	}
	if err := h.slots.LoadAll(r.Context(), req.Dir); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	logger.L(r.Context()).Info("slots imported", "dir", req.Dir)
	h.writeJSON(w, r, http.StatusOK, req)
}

func (h *Handler) decodeDir(w http.ResponseWriter, r *http.Request) (DirRequest, bool) {
	var req DirRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Dir) == "" {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "dir is required", nil)
		return req, false
	}
	return req, true
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
