package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sheetlens/sheetlens/internal/workspace"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

type fileResponse struct {
	File     *workspace.File          `json:"file"`
	Analysis *analysis.AnalysisResult `json:"analysis"`
}

type compareRequest struct {
	File1ID string `json:"file1_id"`
	File2ID string `json:"file2_id"`
}

type compareResponse struct {
	*analysis.ComparisonResult
	Verdict      analysis.Verdict     `json:"verdict"`
	Improvements int                  `json:"improvements"`
	Degradations int                  `json:"degradations"`
	Quality1     quality.QualityScore `json:"quality1"`
	Quality2     quality.QualityScore `json:"quality2"`
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	f, res, err := h.loadAnalysis(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fileResponse{File: f, Analysis: res})
}

func (h *Handler) handleFileQuality(w http.ResponseWriter, r *http.Request) {
	_, res, err := h.loadAnalysis(r.Context(), chi.URLParam(r, "fileID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.scorer.Score(res))
}

func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")
	if err := h.workspaces.DeleteFile(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleCompare compares two stored files. file1 is the baseline.
func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.File1ID = strings.TrimSpace(req.File1ID)
	req.File2ID = strings.TrimSpace(req.File2ID)
	if req.File1ID == "" || req.File2ID == "" {
		writeError(w, http.StatusBadRequest, "file1_id and file2_id are required")
		return
	}

	f1, r1, err := h.loadAnalysis(r.Context(), req.File1ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	f2, r2, err := h.loadAnalysis(r.Context(), req.File2ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	cmp := analysis.Compare(f1.FileName, r1, f2.FileName, r2)
	up, down := cmp.Tally()
	writeJSON(w, http.StatusOK, compareResponse{
		ComparisonResult: cmp,
		Verdict:          cmp.Verdict(),
		Improvements:     up,
		Degradations:     down,
		Quality1:         h.scorer.Score(r1),
		Quality2:         h.scorer.Score(r2),
	})
}
