package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists workspace and file rows.
type Repository interface {
	CreateWorkspace(ctx context.Context, ws *Workspace) error
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*Workspace, error)
	DeleteWorkspace(ctx context.Context, id string) error

	InsertFile(ctx context.Context, f *File) error
	ListFiles(ctx context.Context, workspaceID string) ([]File, error)
	GetFile(ctx context.Context, id string) (*File, error)
	DeleteFile(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// PostgresRepository implements Repository on Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a repository using db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *PostgresRepository) CreateWorkspace(ctx context.Context, ws *Workspace) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO workspaces (id, name, description, icon, color, created_at)
		 VALUES (:id, :name, :description, :icon, :color, :created_at)`,
		ws,
	)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// ListWorkspaces returns all workspaces with their file counts, newest first.
func (r *PostgresRepository) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	workspaces := make([]Workspace, 0)
	err := r.db.SelectContext(ctx, &workspaces,
		`SELECT w.id, w.name, w.description, w.icon, w.color, w.created_at,
		        COUNT(f.id) AS file_count
		 FROM workspaces w
		 LEFT JOIN files f ON f.workspace_id = w.id
		 GROUP BY w.id
		 ORDER BY w.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *PostgresRepository) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	var ws Workspace
	err := r.db.GetContext(ctx, &ws,
		`SELECT w.id, w.name, w.description, w.icon, w.color, w.created_at,
		        (SELECT COUNT(*) FROM files f WHERE f.workspace_id = w.id) AS file_count
		 FROM workspaces w WHERE w.id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get workspace %s: %w", id, err)
	}
	return &ws, nil
}

// DeleteWorkspace removes the workspace; file rows go with it (ON DELETE CASCADE).
func (r *PostgresRepository) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workspace %s: %w", id, err)
	}
	return affectedOne(res, "workspace", id)
}

func (r *PostgresRepository) InsertFile(ctx context.Context, f *File) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO files (id, workspace_id, file_name, storage_ref, total_rows, quality_score, uploaded_at)
		 VALUES (:id, :workspace_id, :file_name, :storage_ref, :total_rows, :quality_score, :uploaded_at)`,
		f,
	)
	if err != nil {
		return fmt.Errorf("insert file %s: %w", f.FileName, err)
	}
	return nil
}

// ListFiles returns the files of a workspace, most recent upload first.
func (r *PostgresRepository) ListFiles(ctx context.Context, workspaceID string) ([]File, error) {
	files := make([]File, 0)
	err := r.db.SelectContext(ctx, &files,
		`SELECT id, workspace_id, file_name, storage_ref, total_rows, quality_score, uploaded_at
		 FROM files WHERE workspace_id = $1
		 ORDER BY uploaded_at DESC`,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (r *PostgresRepository) GetFile(ctx context.Context, id string) (*File, error) {
	var f File
	err := r.db.GetContext(ctx, &f,
		`SELECT id, workspace_id, file_name, storage_ref, total_rows, quality_score, uploaded_at
		 FROM files WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", id, err)
	}
	return &f, nil
}

func (r *PostgresRepository) DeleteFile(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return affectedOne(res, "file", id)
}

func affectedOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
