package api

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/analyzer"
	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

type analyzeResponse struct {
	Analysis *analysis.AnalysisResult `json:"analysis"`
	Quality  quality.QualityScore     `json:"quality"`
}

// analyzeUpload reads the multipart field "file" and sends it to the analysis
// service. On failure it writes the response itself and returns ok=false.
func (h *Handler) analyzeUpload(w http.ResponseWriter, r *http.Request) (string, *analysis.AnalysisResult, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))

	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return "", nil, false
		}
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return "", nil, false
	}
	defer file.Close()

	result, err := h.analyzer.Analyze(r.Context(), hdr.Filename, file)
	if err != nil {
		var svcErr *analysis.ServiceError
		switch {
		case errors.As(err, &svcErr):
			h.sink.Notify(r.Context(), notify.Event{
				Kind:    notify.KindError,
				Message: svcErr.Message,
				Fields:  map[string]string{"file_name": hdr.Filename},
			})
			writeError(w, http.StatusUnprocessableEntity, svcErr.Message)
		case errors.Is(err, analyzer.ErrTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		default:
			h.logger.Error("analysis service call failed", zap.String("file_name", hdr.Filename), zap.Error(err))
			h.sink.Notify(r.Context(), notify.Event{
				Kind:    notify.KindError,
				Message: fmt.Sprintf("Could not analyse %s", hdr.Filename),
			})
			writeError(w, http.StatusBadGateway, "analysis service unavailable")
		}
		return "", nil, false
	}
	return hdr.Filename, result, true
}

// handleAnalyze analyses a workbook without storing it.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	_, result, ok := h.analyzeUpload(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis: result,
		Quality:  h.scorer.Score(result),
	})
}
