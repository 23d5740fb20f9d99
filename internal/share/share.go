// Package share publishes read-only snapshots of an analysis under an
// unguessable id for a limited time.
package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// DefaultTTL is how long a share stays readable.
const DefaultTTL = 7 * 24 * time.Hour

// DefaultRetention is how long an expired share is kept so that readers are
// told it expired rather than that it never existed.
const DefaultRetention = 30 * 24 * time.Hour

var (
	// ErrShareNotFound is returned for an unknown share id.
	ErrShareNotFound = errors.New("share not found")
	// ErrShareExpired is returned for a share past its expiry. Expired shares
	// are never served.
	ErrShareExpired = errors.New("share expired")
)

// Share is a public, time-limited copy of one analysis.
type Share struct {
	ShareID      string                   `json:"share_id"`
	FileName     string                   `json:"file_name"`
	AnalysisData *analysis.AnalysisResult `json:"analysis_data"`
	ExpiresAt    time.Time                `json:"expires_at"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Expired reports whether the share is past its expiry at now.
func (s *Share) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Repository persists shares.
type Repository interface {
	Insert(ctx context.Context, s *Share) error
	Get(ctx context.Context, shareID string) (*Share, error)
	// DeleteExpired removes shares whose expiry is strictly before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service creates and resolves shares.
type Service struct {
	repo      Repository
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
	sink      notify.Sink
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides the validity window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRetention sets how long expired shares are kept before Purge removes
// them. Negative values are ignored.
func WithRetention(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.retention = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSink sets the notification sink.
func WithSink(sink notify.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a share Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		ttl:       DefaultTTL,
		retention: DefaultRetention,
		now:       time.Now,
		sink:      notify.Nop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a share of result valid for the configured TTL.
func (s *Service) Create(ctx context.Context, fileName string, result *analysis.AnalysisResult) (*Share, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, errors.New("share: file name is required")
	}
	if result == nil {
		return nil, errors.New("share: analysis is required")
	}

	now := s.now().UTC()
	sh := &Share{
		ShareID:      uuid.NewString(),
		FileName:     fileName,
		AnalysisData: result,
		ExpiresAt:    now.Add(s.ttl),
		CreatedAt:    now,
	}
	if err := s.repo.Insert(ctx, sh); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	s.logger.Info("share created",
		zap.String("share_id", sh.ShareID),
		zap.String("file_name", fileName),
		zap.Time("expires_at", sh.ExpiresAt))
	s.sink.Notify(ctx, notify.Event{
		Kind:    notify.KindSuccess,
		Message: fmt.Sprintf("Share link for %s created", fileName),
		Fields:  map[string]string{"share_id": sh.ShareID},
	})
	return sh, nil
}

// Get resolves a share. Unknown ids yield ErrShareNotFound; shares past
// their expiry yield ErrShareExpired.
func (s *Service) Get(ctx context.Context, shareID string) (*Share, error) {
	if _, err := uuid.Parse(shareID); err != nil {
		return nil, fmt.Errorf("share %q: %w", shareID, ErrShareNotFound)
	}

	sh, err := s.repo.Get(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if sh.Expired(s.now()) {
		s.logger.Debug("expired share requested", zap.String("share_id", shareID))
		return nil, fmt.Errorf("share %s: %w", shareID, ErrShareExpired)
	}
	if sh.AnalysisData == nil {
		sh.AnalysisData = &analysis.AnalysisResult{}
	}
	return sh, nil
}

// Purge removes shares that expired more than the retention window ago.
// Shares inside the window keep resolving to ErrShareExpired.
func (s *Service) Purge(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().Add(-s.retention))
	if err != nil {
		return 0, fmt.Errorf("purge shares: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired shares purged", zap.Int64("count", n))
	}
	return n, nil
}

// RunPurger calls Purge every interval until ctx is done.
func (s *Service) RunPurger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Purge(ctx); err != nil {
				s.logger.Warn("share purge failed", zap.Error(err))
			}
		}
	}
}
