package workspace

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryRepository is an in-process Repository. The daemon falls back to it
// when no DATABASE_URL is configured.
type MemoryRepository struct {
	mu         sync.RWMutex
	workspaces map[string]Workspace
	files      map[string]File
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		workspaces: make(map[string]Workspace),
		files:      make(map[string]File),
	}
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func (m *MemoryRepository) CreateWorkspace(_ context.Context, ws *Workspace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[ws.ID]; ok {
		return fmt.Errorf("create workspace: duplicate id %s", ws.ID)
	}
	m.workspaces[ws.ID] = *ws
	return nil
}

func (m *MemoryRepository) ListWorkspaces(context.Context) ([]Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Workspace, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		ws.FileCount = m.countFiles(ws.ID)
		out = append(out, ws)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetWorkspace(_ context.Context, id string) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ws, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	ws.FileCount = m.countFiles(id)
	return &ws, nil
}

func (m *MemoryRepository) DeleteWorkspace(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[id]; !ok {
		return fmt.Errorf("workspace %s: %w", id, ErrNotFound)
	}
	delete(m.workspaces, id)
	for fid, f := range m.files {
		if f.WorkspaceID == id {
			delete(m.files, fid)
		}
	}
	return nil
}

func (m *MemoryRepository) InsertFile(_ context.Context, f *File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workspaces[f.WorkspaceID]; !ok {
		return fmt.Errorf("insert file: workspace %s: %w", f.WorkspaceID, ErrNotFound)
	}
	m.files[f.ID] = *f
	return nil
}

func (m *MemoryRepository) ListFiles(_ context.Context, workspaceID string) ([]File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]File, 0)
	for _, f := range m.files {
		if f.WorkspaceID == workspaceID {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetFile(_ context.Context, id string) (*File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	return &f, nil
}

func (m *MemoryRepository) DeleteFile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	delete(m.files, id)
	return nil
}

func (m *MemoryRepository) countFiles(workspaceID string) int {
	n := 0
	for _, f := range m.files {
		if f.WorkspaceID == workspaceID {
			n++
		}
	}
	return n
}
