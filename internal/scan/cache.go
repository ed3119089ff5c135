package scan

import (
	"sync"

	"github.com/mohamedamin/halal-screener/internal/models"
)

// SnapshotCache holds the latest snapshot per symbol. Each pass writes
// fresh snapshots; last-writer-wins per symbol is acceptable because a
// newer snapshot fully supersedes the previous one. A symbol that
// fails a pass simply keeps its stale entry until the next success.
type SnapshotCache interface {
	// Put stores the latest snapshot for its symbol.
	Put(snapshot *models.Snapshot) error

	// Get returns the latest snapshot for a clean symbol, or nil.
	Get(symbol string) (*models.Snapshot, error)

	// All returns all cached snapshots.
	All() ([]*models.Snapshot, error)

	// Len returns the number of cached symbols.
	Len() (int, error)
}

// MemoryCache is the in-process SnapshotCache. Snapshots are stored by
// pointer and treated as immutable after creation, so a read never
// races a write to snapshot fields; only the map itself is guarded.
type MemoryCache struct {
	mu        sync.RWMutex
	snapshots map[string]*models.Snapshot
}

// NewMemoryCache creates an empty in-memory snapshot cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{snapshots: make(map[string]*models.Snapshot)}
}

// Put stores the latest snapshot for its symbol
func (c *MemoryCache) Put(snapshot *models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshot.Symbol] = snapshot
	return nil
}

// Get returns the latest snapshot for a symbol, or nil if absent
func (c *MemoryCache) Get(symbol string) (*models.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshots[symbol], nil
}

// All returns all cached snapshots
func (c *MemoryCache) All() ([]*models.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*models.Snapshot, 0, len(c.snapshots))
	for _, s := range c.snapshots {
		out = append(out, s)
	}
	return out, nil
}

// Len returns the number of cached symbols
func (c *MemoryCache) Len() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots), nil
}
