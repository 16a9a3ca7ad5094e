package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/saltyorg/partsroom/internal/database"
)

type storeRequest struct {
	Name string `json:"part_store_name"`
	Icon string `json:"icon"`
}

// ListStores returns every part store
func (h *Handlers) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListPartStores()
	if err != nil {
		h.serverError(w, r, err, "Failed to list stores")
		return
	}
	writeList(h, w, stores)
}

// StoreSelections returns value/label pairs for store pickers
func (h *Handlers) StoreSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.svc.StoreSelections()
	if err != nil {
		h.serverError(w, r, err, "Failed to list store selections")
		return
	}
	writeList(h, w, selections)
}

// GetStore returns the current name and icon of a store
func (h *Handlers) GetStore(w http.ResponseWriter, r *http.Request, id int64) {
	store, err := h.svc.GetCurrentStoreNameIcon(id)
	if err != nil {
		h.serverError(w, r, err, "Failed to get store")
		return
	}
	if store == nil {
		h.jsonError(w, "Store not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, store)
}

// CreateStore adds a part store
func (h *Handlers) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.InsertPartStore(req.Name, req.Icon)
	h.writeResult(w, r, res, err, http.StatusCreated)
}

// UpdateStore renames a store or changes its icon
func (h *Handlers) UpdateStore(w http.ResponseWriter, r *http.Request, id int64) {
	var req storeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.UpdatePartStore(id, req.Name, req.Icon)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// DeleteStore removes a store
func (h *Handlers) DeleteStore(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := h.svc.DeletePartStore(id)
	h.writeResult(w, r, res, err, http.StatusOK)
}

// StoreExists reports whether a store name is taken
func (h *Handlers) StoreExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.svc.CheckIfStoreExists(chi.URLParam(r, "name"))
	if err != nil {
		h.serverError(w, r, err, "Failed to check store")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

// StoreParts returns the full part rows in a store
func (h *Handlers) StoreParts(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.PartsInStore(chi.URLParam(r, "name"))
	if err != nil {
		h.serverError(w, r, err, "Failed to list store parts")
		return
	}
	writeList(h, w, parts)
}

// StoreInventory returns id, name, amount and number for each part in a store
func (h *Handlers) StoreInventory(w http.ResponseWriter, r *http.Request) {
	parts, err := h.svc.PartsByStore(chi.URLParam(r, "name"))
	if err != nil {
		h.serverError(w, r, err, "Failed to list store inventory")
		return
	}
	writeList(h, w, parts)
}

// StoreTotal sums the part amounts in a store
func (h *Handlers) StoreTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.svc.TotalPartsByStore(chi.URLParam(r, "name"))
	if err != nil {
		h.serverError(w, r, err, "Failed to total store")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// UpdateAmounts applies a batch of amount changes
func (h *Handlers) UpdateAmounts(w http.ResponseWriter, r *http.Request) {
	updates, err := decodeJSONList[database.AmountUpdate](w, r)
	if err != nil {
		h.badRequest(w, err)
		return
	}
	res, err := h.svc.UpdateAmounts(updates)
	h.writeResult(w, r, res, err, http.StatusOK)
}
