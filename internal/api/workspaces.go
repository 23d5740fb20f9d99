package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sheetlens/sheetlens/internal/workspace"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

type uploadResponse struct {
	File     *workspace.File          `json:"file"`
	Analysis *analysis.AnalysisResult `json:"analysis"`
	Quality  quality.QualityScore     `json:"quality"`
}

func (h *Handler) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	list, err := h.workspaces.ListWorkspaces(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var in workspace.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ws, err := h.workspaces.CreateWorkspace(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *Handler) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := h.workspaces.GetWorkspace(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *Handler) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "workspaceID")
	if err := h.workspaces.DeleteWorkspace(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.RemoveWorkspace(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.workspaces.ListFiles(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// handleUploadFile analyses an uploaded workbook and stores the result in
// the workspace's history.
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	workspaceID := chi.URLParam(r, "workspaceID")
	if _, err := h.workspaces.GetWorkspace(r.Context(), workspaceID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	fileName, result, ok := h.analyzeUpload(w, r)
	if !ok {
		return
	}

	f, err := h.workspaces.AddFile(r.Context(), workspaceID, fileName, result)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Put(f.ID, f, result)

	writeJSON(w, http.StatusCreated, uploadResponse{
		File:     f,
		Analysis: result,
		Quality:  h.scorer.Score(result),
	})
}
