package handlers

import (
	"net/http"

	"github.com/saltyorg/partsroom/internal/inventory"
)

// ListParts returns every part
func (h *Handlers) ListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.ListParts()
	if err != nil {
		h.serverError(w, r, err, "Failed to list parts")
		return
	}
	writeList(h, w, parts)
}

// LowParts returns the parts below their threshold
func (h *Handlers) LowParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.GetLowParts()
	if err != nil {
		h.serverError(w, r, err, "Failed to list low parts")
		return
	}
	writeList(h, w, parts)
}

// GetPart returns one part
func (h *Handlers) GetPart(w http.ResponseWriter, r *http.Request, id int64) {
	part, err := h.svc.GetPartInformation(id)
	if err != nil {
		h.serverError(w, r, err, "Failed to get part")
		return
	}
	if part == nil {
		h.jsonError(w, "Part not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, part)
}

// CreatePart adds a part
func (h *Handlers) CreatePart(w http.ResponseWriter, r *http.Request) {
	var in inventory.PartInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.InsertPart(in)
	h.writeResult(w, r, res, err, http.StatusCreated)
}

// UpdatePart replaces a part's fields
func (h *Handlers) UpdatePart(w http.ResponseWriter, r *http.Request, id int64) {
	var in inventory.PartInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.UpdatePart(id, in)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// DeletePart removes a part
func (h *Handlers) DeletePart(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := h.svc.DeletePart(id)
	h.writeResult(w, r, res, err, http.StatusOK)
}

type thresholdRequest struct {
	Threshold *int64 `json:"low_thresh" validate:"required"`
}

// UpdateThreshold sets the low-stock threshold of a part
func (h *Handlers) UpdateThreshold(w http.ResponseWriter, r *http.Request, id int64) {
	var req thresholdRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.UpdateThreshold(id, *req.Threshold)
	h.writeResult(w, r, res, err, http.StatusOK)
}
