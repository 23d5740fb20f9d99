package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/internal/storage"
	"github.com/sheetlens/sheetlens/pkg/analysis"
	"github.com/sheetlens/sheetlens/pkg/quality"
)

// Service coordinates workspace rows, file rows and analysis blobs.
type Service struct {
	repo   Repository
	blobs  storage.Client
	scorer *quality.Scorer
	sink   notify.Sink
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithScorer overrides the quality scorer used when files are added.
func WithScorer(s *quality.Scorer) Option {
	return func(svc *Service) { svc.scorer = s }
}

// WithSink sets the notification sink.
func WithSink(s notify.Sink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

// NewService creates a workspace Service.
func NewService(repo Repository, blobs storage.Client, opts ...Option) *Service {
	svc := &Service{
		repo:   repo,
		blobs:  blobs,
		scorer: quality.NewScorer(quality.DefaultPenalties()...),
		sink:   notify.Nop{},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ping checks the backing database.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// CreateWorkspace validates in and stores a new workspace.
func (s *Service) CreateWorkspace(ctx context.Context, in CreateInput) (*Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("workspace name is required: %w", ErrInvalid)
	}

	ws := &Workspace{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Icon:        in.Icon,
		Color:       in.Color,
		CreatedAt:   s.now().UTC(),
	}
	if ws.Icon == "" {
		ws.Icon = DefaultIcon
	}
	if ws.Color == "" {
		ws.Color = DefaultColor
	}

	if err := s.repo.CreateWorkspace(ctx, ws); err != nil {
		return nil, err
	}

	s.logger.Info("workspace created", zap.String("workspace_id", ws.ID), zap.String("name", ws.Name))
	s.sink.Notify(ctx, notify.Event{
		Kind:    notify.KindSuccess,
		Message: fmt.Sprintf("Workspace %q created", ws.Name),
		Fields:  map[string]string{"workspace_id": ws.ID},
	})
	return ws, nil
}

// ListWorkspaces returns every workspace with its file count, newest first.
func (s *Service) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	return s.repo.ListWorkspaces(ctx)
}

// GetWorkspace returns a single workspace.
func (s *Service) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	if err := checkID("workspace", id); err != nil {
		return nil, err
	}
	return s.repo.GetWorkspace(ctx, id)
}

// DeleteWorkspace removes a workspace, its files and their analysis blobs.
func (s *Service) DeleteWorkspace(ctx context.Context, id string) error {
	if err := checkID("workspace", id); err != nil {
		return err
	}
	files, err := s.repo.ListFiles(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteWorkspace(ctx, id); err != nil {
		return err
	}

	for _, f := range files {
		if err := s.blobs.DeleteAnalysis(ctx, f.WorkspaceID, f.ID); err != nil {
			// Rows are already gone; an orphaned blob is harmless.
			s.logger.Warn("delete analysis blob", zap.String("file_id", f.ID), zap.Error(err))
		}
	}

	s.logger.Info("workspace deleted", zap.String("workspace_id", id), zap.Int("files", len(files)))
	return nil
}

// AddFile stores an analysed file in a workspace. The analysis goes to blob
// storage; the row records its quality score and row count for listings.
func (s *Service) AddFile(ctx context.Context, workspaceID, fileName string, result *analysis.AnalysisResult) (*File, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("file name is required: %w", ErrInvalid)
	}
	if result == nil {
		return nil, fmt.Errorf("analysis is required: %w", ErrInvalid)
	}
	if err := checkID("workspace", workspaceID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}

	f := &File{
		ID:           uuid.NewString(),
		WorkspaceID:  workspaceID,
		FileName:     fileName,
		TotalRows:    result.TotalRows(),
		QualityScore: s.scorer.Score(result).Score,
		UploadedAt:   s.now().UTC(),
	}
	f.StorageRef = storage.Ref(workspaceID, f.ID)

	if err := s.blobs.PutAnalysis(ctx, workspaceID, f.ID, data); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	if err := s.repo.InsertFile(ctx, f); err != nil {
		if delErr := s.blobs.DeleteAnalysis(ctx, workspaceID, f.ID); delErr != nil {
			s.logger.Warn("rollback analysis blob", zap.String("file_id", f.ID), zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("file added",
		zap.String("workspace_id", workspaceID),
		zap.String("file_id", f.ID),
		zap.String("file_name", fileName),
		zap.Int("quality_score", f.QualityScore))
	s.sink.Notify(ctx, notify.Event{
		Kind:    notify.KindSuccess,
		Message: fmt.Sprintf("%s saved", fileName),
		Fields:  map[string]string{"workspace_id": workspaceID, "file_id": f.ID},
	})
	return f, nil
}

// ListFiles returns a workspace's files, most recent first.
func (s *Service) ListFiles(ctx context.Context, workspaceID string) ([]File, error) {
	if err := checkID("workspace", workspaceID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetWorkspace(ctx, workspaceID); err != nil {
		return nil, err
	}
	return s.repo.ListFiles(ctx, workspaceID)
}

// GetFile returns a file row.
func (s *Service) GetFile(ctx context.Context, id string) (*File, error) {
	if err := checkID("file", id); err != nil {
		return nil, err
	}
	return s.repo.GetFile(ctx, id)
}

// LoadAnalysis returns a file row together with its decoded analysis.
func (s *Service) LoadAnalysis(ctx context.Context, id string) (*File, *analysis.AnalysisResult, error) {
	if err := checkID("file", id); err != nil {
		return nil, nil, err
	}
	f, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.blobs.GetAnalysis(ctx, f.WorkspaceID, f.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("analysis for file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load analysis %s: %w", id, err)
	}

	result, err := analysis.Decode(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return f, result, nil
}

// DeleteFile removes a file row and its analysis blob.
func (s *Service) DeleteFile(ctx context.Context, id string) error {
	if err := checkID("file", id); err != nil {
		return err
	}
	f, err := s.repo.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFile(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.DeleteAnalysis(ctx, f.WorkspaceID, f.ID); err != nil {
		s.logger.Warn("delete analysis blob", zap.String("file_id", f.ID), zap.Error(err))
	}
	return nil
}

// checkID rejects ids that cannot name a row. The id columns are UUIDs, so
// anything else is reported as not found before it reaches the database.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}
