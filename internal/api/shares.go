package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type shareCreatedResponse struct {
	ShareID   string    `json:"share_id"`
	FileName  string    `json:"file_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	f, res, err := h.loadAnalysis(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	sh, err := h.shares.Create(r.Context(), f.FileName, res)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, shareCreatedResponse{
		ShareID:   sh.ShareID,
		FileName:  sh.FileName,
		ExpiresAt: sh.ExpiresAt,
	})
}

// handleGetShare serves a shared analysis. Expired links answer 410 so the
// front-end can tell them apart from links that never existed.
func (h *Handler) handleGetShare(w http.ResponseWriter, r *http.Request) {
	sh, err := h.shares.Get(r.Context(), chi.URLParam(r, "shareID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}
