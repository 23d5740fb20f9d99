// Package api implements the sheetlens REST API: workspaces, file history,
// comparisons and share links, backed by Postgres and blob storage.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/analyzer"
	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/internal/share"
	"github.com/sheetlens/sheetlens/internal/workspace"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

// Analyzer turns an uploaded workbook into an analysis.
type Analyzer interface {
	Analyze(ctx context.Context, fileName string, workbook io.Reader) (*analysis.AnalysisResult, error)
}

// Handler is the top-level API handler for the sheetlens service.
type Handler struct {
	workspaces *workspace.Service
	shares     *share.Service
	analyzer   Analyzer
	scorer     *quality.Scorer
	cache      *AnalysisCache
	sink       notify.Sink
	logger     *zap.Logger
	maxUpload  int64
}

// Config collects the Handler's collaborators.
type Config struct {
	Workspaces *workspace.Service
	Shares     *share.Service
	Analyzer   Analyzer
	Scorer     *quality.Scorer // nil uses the default weights
	Cache      *AnalysisCache  // nil creates a default-sized cache
	Sink       notify.Sink
	Logger     *zap.Logger
	MaxUpload  int64 // bytes; 0 uses analyzer.DefaultMaxUploadSize
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		workspaces: cfg.Workspaces,
		shares:     cfg.Shares,
		analyzer:   cfg.Analyzer,
		scorer:     cfg.Scorer,
		cache:      cfg.Cache,
		sink:       cfg.Sink,
		logger:     cfg.Logger,
		maxUpload:  cfg.MaxUpload,
	}
	if h.scorer == nil {
		h.scorer = quality.NewScorer(quality.DefaultPenalties()...)
	}
	if h.cache == nil {
		h.cache = NewAnalysisCache(0)
	}
	if h.sink == nil {
		h.sink = notify.Nop{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.maxUpload <= 0 {
		h.maxUpload = analyzer.DefaultMaxUploadSize
	}
	return h
}

// Router builds the chi router with middleware. apiKey protects every
// /api route except the public share endpoint; empty disables auth.
func (h *Handler) Router(apiKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.logger))
	r.Use(CORS)

	r.Get("/healthz", h.handleHealth)

	// Public: shared analyses are readable by anyone holding the link.
	r.Get("/api/shares/{shareID}", h.handleGetShare)

	r.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(apiKey))
		h.RegisterRoutes(r)
	})
	return r
}

// RegisterRoutes registers the authenticated API routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/analyze", h.handleAnalyze)

	r.Route("/api/workspaces", func(r chi.Router) {
		r.Get("/", h.handleListWorkspaces)
		r.Post("/", h.handleCreateWorkspace)
		r.Get("/{workspaceID}", h.handleGetWorkspace)
		r.Delete("/{workspaceID}", h.handleDeleteWorkspace)
		r.Get("/{workspaceID}/files", h.handleListFiles)
		r.Post("/{workspaceID}/files", h.handleUploadFile)
	})

	r.Route("/api/files/{fileID}", func(r chi.Router) {
		r.Get("/", h.handleGetFile)
		r.Delete("/", h.handleDeleteFile)
		r.Get("/quality", h.handleFileQuality)
		r.Post("/shares", h.handleCreateShare)
	})

	r.Post("/api/compare", h.handleCompare)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.workspaces.Ping(r.Context()); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadAnalysis returns a stored file and its analysis, going through the cache.
func (h *Handler) loadAnalysis(ctx context.Context, fileID string) (*workspace.File, *analysis.AnalysisResult, error) {
	if f, res, ok := h.cache.Get(fileID); ok {
		return f, res, nil
	}
	f, res, err := h.workspaces.LoadAnalysis(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	h.cache.Put(fileID, f, res)
	return f, res, nil
}

// writeServiceError maps service errors to HTTP statuses. Unexpected errors
// are logged and reported as 500 without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *analysis.ServiceError
	switch {
	case errors.Is(err, workspace.ErrNotFound), errors.Is(err, share.ErrShareNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, share.ErrShareExpired):
		writeError(w, http.StatusGone, "this share link has expired")
	case errors.Is(err, workspace.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analyzer.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
	case errors.As(err, &svcErr):
		writeError(w, http.StatusUnprocessableEntity, svcErr.Message)
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON encodes data before writing the status, so an unencodable value
// becomes a 500 instead of a success with a truncated body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		zap.L().Error("encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error": "internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
