package api

import (
	"sync"

	"github.com/sheetlens/sheetlens/internal/workspace"
	"github.com/sheetlens/sheetlens/pkg/analysis"
)

// AnalysisCache is a thread-safe LRU cache of decoded analyses keyed by file id.
type AnalysisCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	file   *workspace.File
	result *analysis.AnalysisResult
}

// NewAnalysisCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 50.
func NewAnalysisCache(maxSize int) *AnalysisCache {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &AnalysisCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the cached file and analysis, or ok=false.
func (c *AnalysisCache) Get(fileID string) (*workspace.File, *analysis.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[fileID]
	if !ok {
		return nil, nil, false
	}
	c.moveToEnd(fileID)
	return entry.file, entry.result, true
}

// Put adds an entry, evicting the least recently used one if full.
func (c *AnalysisCache) Put(fileID string, f *workspace.File, result *analysis.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fileID]; ok {
		c.entries[fileID] = &cacheEntry{file: f, result: result}
		c.moveToEnd(fileID)
		return
	}

	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[fileID] = &cacheEntry{file: f, result: result}
	c.order = append(c.order, fileID)
}

// Remove drops an entry if present.
func (c *AnalysisCache) Remove(fileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[fileID]; !ok {
		return
	}
	delete(c.entries, fileID)
	for i, k := range c.order {
		if k == fileID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// RemoveWorkspace drops every entry belonging to a workspace.
func (c *AnalysisCache) RemoveWorkspace(workspaceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.order[:0]
	for _, id := range c.order {
		if c.entries[id].file.WorkspaceID == workspaceID {
			delete(c.entries, id)
			continue
		}
		kept = append(kept, id)
	}
	c.order = kept
}

// Len returns the number of cached entries.
func (c *AnalysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AnalysisCache) moveToEnd(fileID string) {
	for i, k := range c.order {
		if k == fileID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, fileID)
			return
		}
	}
}
