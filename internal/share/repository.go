package share

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// PostgresRepository stores shares in the shares table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a repository using db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type shareRow struct {
	ShareID      string    `db:"share_id"`
	FileName     string    `db:"file_name"`
	AnalysisData []byte    `db:"analysis_data"`
	ExpiresAt    time.Time `db:"expires_at"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r *PostgresRepository) Insert(ctx context.Context, s *Share) error {
	data, err := json.Marshal(s.AnalysisData)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	_, err = r.db.NamedExecContext(ctx,
		`INSERT INTO shares (share_id, file_name, analysis_data, expires_at, created_at)
		 VALUES (:share_id, :file_name, :analysis_data, :expires_at, :created_at)`,
		shareRow{
			ShareID:      s.ShareID,
			FileName:     s.FileName,
			AnalysisData: data,
			ExpiresAt:    s.ExpiresAt,
			CreatedAt:    s.CreatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, shareID string) (*Share, error) {
	var row shareRow
	err := r.db.GetContext(ctx, &row,
		`SELECT share_id, file_name, analysis_data, expires_at, created_at
		 FROM shares WHERE share_id = $1`,
		shareID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("share %s: %w", shareID, ErrShareNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get share %s: %w", shareID, err)
	}

	var result analysis.AnalysisResult
	if len(row.AnalysisData) > 0 {
		if err := json.Unmarshal(row.AnalysisData, &result); err != nil {
			return nil, fmt.Errorf("decode share %s: %w", shareID, err)
		}
	}
	return &Share{
		ShareID:      row.ShareID,
		FileName:     row.FileName,
		AnalysisData: &result,
		ExpiresAt:    row.ExpiresAt,
		CreatedAt:    row.CreatedAt,
	}, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM shares WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired shares: %w", err)
	}
	return res.RowsAffected()
}

// MemoryRepository keeps shares in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	shares map[string]Share
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{shares: make(map[string]Share)}
}

func (m *MemoryRepository) Insert(_ context.Context, s *Share) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shares[s.ShareID]; ok {
		return fmt.Errorf("insert share: duplicate id %s", s.ShareID)
	}
	m.shares[s.ShareID] = *s
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, shareID string) (*Share, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shares[shareID]
	if !ok {
		return nil, fmt.Errorf("share %s: %w", shareID, ErrShareNotFound)
	}
	return &s, nil
}

func (m *MemoryRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.shares {
		if s.ExpiresAt.Before(cutoff) {
			delete(m.shares, id)
			n++
		}
	}
	return n, nil
}
