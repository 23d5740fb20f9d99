// Package storage keeps analysis payloads in blob storage. Row metadata lives
// in Postgres; the AnalysisResult JSON itself is stored here under
// <workspace>/analyses/<file>.json.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no blob exists for the requested key.
var ErrNotFound = errors.New("blob not found")

// Client abstracts blob storage for analysis payloads.
type Client interface {
	PutAnalysis(ctx context.Context, workspaceID, fileID string, data []byte) error
	GetAnalysis(ctx context.Context, workspaceID, fileID string) ([]byte, error)
	DeleteAnalysis(ctx context.Context, workspaceID, fileID string) error
}

// Ref returns the storage reference recorded next to the file row.
func Ref(workspaceID, fileID string) string {
	return key(workspaceID, fileID)
}

func key(workspaceID, fileID string) string {
	return workspaceID + "/analyses/" + fileID + ".json"
}

// Config selects and configures a storage backend.
type Config struct {
	Backend   string // local, s3, gcs
	LocalPath string
	Bucket    string
	S3        S3Config
}

// New creates the storage client described by cfg.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath), nil
	case "s3":
		s3cfg := cfg.S3
		if s3cfg.Bucket == "" {
			s3cfg.Bucket = cfg.Bucket
		}
		return NewS3Storage(ctx, s3cfg)
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// LocalStorage implements Client using the local filesystem.
// Useful for development and testing.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) path(workspaceID, fileID string) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(key(workspaceID, fileID)))
}

// PutAnalysis stores an analysis blob.
func (s *LocalStorage) PutAnalysis(ctx context.Context, workspaceID, fileID string, data []byte) error {
	path := s.path(workspaceID, fileID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetAnalysis retrieves an analysis blob.
func (s *LocalStorage) GetAnalysis(ctx context.Context, workspaceID, fileID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(workspaceID, fileID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", workspaceID, fileID, ErrNotFound)
	}
	return data, err
}

// DeleteAnalysis removes an analysis blob. Deleting a missing blob is not an error.
func (s *LocalStorage) DeleteAnalysis(ctx context.Context, workspaceID, fileID string) error {
	err := os.Remove(s.path(workspaceID, fileID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
