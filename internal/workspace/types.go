// Package workspace manages workspaces (named groups of analysed files) and
// the file history inside each of them. Row metadata lives in Postgres and the
// analysis payload in blob storage.
package workspace

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a workspace or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned for input that fails validation.
	ErrInvalid = errors.New("invalid input")
)

// Workspace groups analysed files. FileCount is only populated by listings.
type Workspace struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	Color       string    `db:"color" json:"color"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	FileCount   int       `db:"file_count" json:"file_count"`
}

// File is one analysed spreadsheet stored in a workspace.
type File struct {
	ID           string    `db:"id" json:"id"`
	WorkspaceID  string    `db:"workspace_id" json:"workspace_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	StorageRef   string    `db:"storage_ref" json:"storage_ref"`
	TotalRows    int       `db:"total_rows" json:"total_rows"`
	QualityScore int       `db:"quality_score" json:"quality_score"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// CreateInput holds the fields accepted when creating a workspace.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Defaults applied to empty presentation fields.
const (
	DefaultIcon  = "folder"
	DefaultColor = "#6366f1"
)
