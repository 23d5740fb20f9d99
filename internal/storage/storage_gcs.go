package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage implements Client using Google Cloud Storage.
type GCSStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCSStorage creates a GCS-backed Client.
// It uses Application Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSStorage{client: client, bucket: bucket}, nil
}

func (s *GCSStorage) PutAnalysis(ctx context.Context, workspaceID, fileID string, data []byte) error {
	k := key(workspaceID, fileID)
	w := s.client.Bucket(s.bucket).Object(k).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", k, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", k, err)
	}
	return nil
}

func (s *GCSStorage) GetAnalysis(ctx context.Context, workspaceID, fileID string) ([]byte, error) {
	k := key(workspaceID, fileID)
	r, err := s.client.Bucket(s.bucket).Object(k).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcs read %s: %w", k, ErrNotFound)
		}
		return nil, fmt.Errorf("gcs read %s: %w", k, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSStorage) DeleteAnalysis(ctx context.Context, workspaceID, fileID string) error {
	k := key(workspaceID, fileID)
	err := s.client.Bucket(s.bucket).Object(k).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("gcs delete %s: %w", k, err)
	}
	return nil
}
