package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type typeRequest struct {
	Name string `json:"type_name"`
	Unit string `json:"type_unit"`
}

// ListTypes returns every part type
func (h *Handlers) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.ListPartTypes()
	if err != nil {
		h.serverError(w, r, err, "Failed to list part types")
		return
	}
	writeList(h, w, types)
}

// TypeNames returns the names of all part types
func (h *Handlers) TypeNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.PartTypeNames()
	if err != nil {
		h.serverError(w, r, err, "Failed to list part type names")
		return
	}
	writeList(h, w, names)
}

// CreateType adds a part type
func (h *Handlers) CreateType(w http.ResponseWriter, r *http.Request) {
	var req typeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.InsertPartType(req.Name, req.Unit)
	h.writeResult(w, r, res, err, http.StatusCreated)
}

// UpdateType renames a part type or changes its unit
func (h *Handlers) UpdateType(w http.ResponseWriter, r *http.Request, id int64) {
	var req typeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.UpdatePartType(id, req.Name, req.Unit)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// DeleteType removes a part type
func (h *Handlers) DeleteType(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := h.svc.DeletePartType(id)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// TypeParts returns the parts of a type
func (h *Handlers) TypeParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.PartsByType(chi.URLParam(r, "name"))
	if err != nil {
		h.serverError(w, r, err, "Failed to list parts by type")
		return
	}
	writeList(h, w, parts)
}

// TypeUnit returns the unit of a type, 404 when there is no such type
func (h *Handlers) TypeUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	exists, err := h.svc.CheckIfTypeExists(name)
	if err != nil {
		h.serverError(w, r, err, "Failed to check part type")
		return
	}
	if !exists {
		h.jsonError(w, "Part type not found", http.StatusNotFound)
		return
	}

	unit, err := h.svc.UnitForType(name)
	if err != nil {
		h.serverError(w, r, err, "Failed to get unit")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"type_unit": unit})
}
