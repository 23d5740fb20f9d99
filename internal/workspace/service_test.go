package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetlens/sheetlens/internal/notify"
	"github.com/sheetlens/sheetlens/internal/storage"
	"github.com/sheetlens/sheetlens/pkg/analysis"
)

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (l *eventLog) Notify(_ context.Context, ev notify.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// stepClock returns t0, t0+1m, t0+2m, ...
func stepClock(t0 time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return t0.Add(time.Duration(n-1) * time.Minute)
	}
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, *storage.LocalStorage, *eventLog) {
	t.Helper()
	repo := NewMemoryRepository()
	blobs := storage.NewLocalStorage(t.TempDir())
	events := &eventLog{}
	svc := NewService(repo, blobs,
		WithSink(events),
		WithClock(stepClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))),
	)
	return svc, repo, blobs, events
}

func sampleResult(rows, missing int) *analysis.AnalysisResult {
	return &analysis.AnalysisResult{
		Summary: analysis.Summary{TotalRows: rows, TotalColumns: 2, MissingValues: missing},
		KPIs:    []analysis.KPI{{Column: "Ventes", Total: 1000}},
		Alerts:  []analysis.Alert{{Type: analysis.AlertWarning, Message: "gaps"}},
	}
}

func TestCreateWorkspace(t *testing.T) {
	svc, _, _, events := newTestService(t)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "  Ventes 2024 ", Description: "monthly"})
	require.NoError(t, err)

	assert.NotEmpty(t, ws.ID)
	assert.Equal(t, "Ventes 2024", ws.Name)
	assert.Equal(t, DefaultIcon, ws.Icon)
	assert.Equal(t, DefaultColor, ws.Color)
	require.Len(t, events.events, 1)
	assert.Equal(t, notify.KindSuccess, events.events[0].Kind)
}

func TestCreateWorkspace_RequiresName(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.CreateWorkspace(context.Background(), CreateInput{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestListWorkspaces_NewestFirstWithCounts(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	older, err := svc.CreateWorkspace(ctx, CreateInput{Name: "older"})
	require.NoError(t, err)
	newer, err := svc.CreateWorkspace(ctx, CreateInput{Name: "newer"})
	require.NoError(t, err)

	_, err = svc.AddFile(ctx, older.ID, "jan.xlsx", sampleResult(10, 0))
	require.NoError(t, err)
	_, err = svc.AddFile(ctx, older.ID, "feb.xlsx", sampleResult(12, 0))
	require.NoError(t, err)

	list, err := svc.ListWorkspaces(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 0, list[0].FileCount)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, 2, list[1].FileCount)
}

func TestAddFile_StoresBlobAndScore(t *testing.T) {
	svc, _, blobs, _ := newTestService(t)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)

	f, err := svc.AddFile(ctx, ws.ID, "jan.xlsx", sampleResult(100, 3))
	require.NoError(t, err)

	// 3 missing * 2 + 1 alert * 10
	assert.Equal(t, 84, f.QualityScore)
	assert.Equal(t, 100, f.TotalRows)
	assert.Equal(t, storage.Ref(ws.ID, f.ID), f.StorageRef)

	_, err = blobs.GetAnalysis(ctx, ws.ID, f.ID)
	require.NoError(t, err)

	got, result, err := svc.LoadAnalysis(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, 100, result.TotalRows())
	require.Len(t, result.KPIs, 1)
	assert.Equal(t, "Ventes", result.KPIs[0].Column)
}

func TestAddFile_Validation(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)

	_, err = svc.AddFile(ctx, ws.ID, "", sampleResult(1, 0))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.AddFile(ctx, ws.ID, "a.xlsx", nil)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.AddFile(ctx, "missing", "a.xlsx", sampleResult(1, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiles_NewestFirst(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)

	for _, name := range []string{"jan.xlsx", "feb.xlsx", "mar.xlsx"} {
		_, err := svc.AddFile(ctx, ws.ID, name, sampleResult(1, 0))
		require.NoError(t, err)
	}

	files, err := svc.ListFiles(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "mar.xlsx", files[0].FileName)
	assert.Equal(t, "jan.xlsx", files[2].FileName)

	_, err = svc.ListFiles(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	svc, _, blobs, _ := newTestService(t)
	ctx := context.Background()
	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)
	f, err := svc.AddFile(ctx, ws.ID, "jan.xlsx", sampleResult(1, 0))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFile(ctx, f.ID))

	_, err = svc.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = blobs.GetAnalysis(ctx, ws.ID, f.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteFile(ctx, f.ID), ErrNotFound)
}

func TestDeleteWorkspace_CascadesFiles(t *testing.T) {
	svc, _, blobs, _ := newTestService(t)
	ctx := context.Background()
	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)
	f, err := svc.AddFile(ctx, ws.ID, "jan.xlsx", sampleResult(1, 0))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteWorkspace(ctx, ws.ID))

	_, err = svc.GetWorkspace(ctx, ws.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetFile(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = blobs.GetAnalysis(ctx, ws.ID, f.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteWorkspace(ctx, ws.ID), ErrNotFound)
}

func TestLoadAnalysis_MissingBlob(t *testing.T) {
	svc, _, blobs, _ := newTestService(t)
	ctx := context.Background()
	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)
	f, err := svc.AddFile(ctx, ws.ID, "jan.xlsx", sampleResult(1, 0))
	require.NoError(t, err)

	require.NoError(t, blobs.DeleteAnalysis(ctx, ws.ID, f.ID))

	_, _, err = svc.LoadAnalysis(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type failingRepo struct {
	*MemoryRepository
}

func (failingRepo) InsertFile(context.Context, *File) error {
	return errors.New("connection reset")
}

func TestAddFile_RollsBackBlobOnInsertFailure(t *testing.T) {
	repo := failingRepo{NewMemoryRepository()}
	dir := t.TempDir()
	blobs := storage.NewLocalStorage(dir)
	svc := NewService(repo, blobs)
	ctx := context.Background()

	ws, err := svc.CreateWorkspace(ctx, CreateInput{Name: "ws"})
	require.NoError(t, err)

	_, err = svc.AddFile(ctx, ws.ID, "jan.xlsx", sampleResult(1, 0))
	require.Error(t, err)

	files, err := repo.ListFiles(ctx, ws.ID)
	require.NoError(t, err)
	assert.Empty(t, files)

	blobsLeft, err := filepath.Glob(filepath.Join(dir, ws.ID, "analyses", "*.json"))
	require.NoError(t, err)
	assert.Empty(t, blobsLeft)
}

// uuidColumnRepo rejects malformed ids the way a UUID column does.
type uuidColumnRepo struct {
	*MemoryRepository
}

var errInvalidUUID = errors.New(`pq: invalid input syntax for type uuid`)

func (r uuidColumnRepo) GetWorkspace(ctx context.Context, id string) (*Workspace, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errInvalidUUID
	}
	return r.MemoryRepository.GetWorkspace(ctx, id)
}

func (r uuidColumnRepo) DeleteWorkspace(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errInvalidUUID
	}
	return r.MemoryRepository.DeleteWorkspace(ctx, id)
}

func (r uuidColumnRepo) ListFiles(ctx context.Context, workspaceID string) ([]File, error) {
	if _, err := uuid.Parse(workspaceID); err != nil {
		return nil, errInvalidUUID
	}
	return r.MemoryRepository.ListFiles(ctx, workspaceID)
}

func (r uuidColumnRepo) GetFile(ctx context.Context, id string) (*File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errInvalidUUID
	}
	return r.MemoryRepository.GetFile(ctx, id)
}

func (r uuidColumnRepo) DeleteFile(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errInvalidUUID
	}
	return r.MemoryRepository.DeleteFile(ctx, id)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	svc := NewService(uuidColumnRepo{NewMemoryRepository()}, storage.NewLocalStorage(t.TempDir()))
	ctx := context.Background()

	for _, id := range []string{"abc", "", "42", "not-a-uuid-at-all"} {
		_, err := svc.GetWorkspace(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "GetWorkspace(%q)", id)

		assert.ErrorIs(t, svc.DeleteWorkspace(ctx, id), ErrNotFound, "DeleteWorkspace(%q)", id)

		_, err = svc.ListFiles(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "ListFiles(%q)", id)

		_, err = svc.AddFile(ctx, id, "jan.xlsx", sampleResult(1, 0))
		assert.ErrorIs(t, err, ErrNotFound, "AddFile(%q)", id)

		_, err = svc.GetFile(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "GetFile(%q)", id)

		_, _, err = svc.LoadAnalysis(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound, "LoadAnalysis(%q)", id)

		assert.ErrorIs(t, svc.DeleteFile(ctx, id), ErrNotFound, "DeleteFile(%q)", id)
	}
}
