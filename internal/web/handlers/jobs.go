package handlers

import (
	"net/http"
	"time"

	"github.com/saltyorg/partsroom/internal/web/middleware"
)

// jobTimeLayout is used when a job arrives without a time
const jobTimeLayout = "2006-01-02 15:04"

type jobRequest struct {
	Time          string `json:"time"`
	PartStoreName string `json:"part_store_name"`
	PartsUsed     string `json:"parts_used"`
}

// ListJobs returns every recorded job
func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.GetJobs()
	if err != nil {
		h.serverError(w, r, err, "Failed to list jobs")
		return
	}
	writeList(h, w, jobs)
}

// RecordJob appends a job for the logged in user
func (h *Handlers) RecordJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if req.Time == "" {
		req.Time = time.Now().Format(jobTimeLayout)
	}

	account := middleware.GetAccount(r.Context())
	job, err := h.svc.RecordJob(account.Username, req.Time, req.PartStoreName, req.PartsUsed)
	if err != nil {
		h.serverError(w, r, err, "Failed to record job")
		return
	}
	h.writeJSON(w, http.StatusCreated, job)
}

// ListIcons returns the available store icon names
func (h *Handlers) ListIcons(w http.ResponseWriter, r *http.Request) {
	if h.icons == nil {
		writeList(h, w, []string(nil))
		return
	}
	writeList(h, w, h.icons.Names())
}
