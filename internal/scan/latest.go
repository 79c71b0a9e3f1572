package scan

import (
	"sync"

	"SignalScanner/internal/model"
)

// LatestCache keeps the newest completed snapshot per scan type. It is
// independent of the job store so snapshots outlive job records.
type LatestCache struct {
	mu    sync.RWMutex
	snaps map[model.ScanType]model.LatestSnapshot
}

func NewLatestCache() *LatestCache {
	return &LatestCache{snaps: make(map[model.ScanType]model.LatestSnapshot)}
}

// Publish stores snap unless a newer completion is already cached.
func (c *LatestCache) Publish(snap model.LatestSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.snaps[snap.ScanType]; ok && cur.CompletedAt.After(snap.CompletedAt) {
		return false
	}
	c.snaps[snap.ScanType] = snap
	return true
}

// Get returns the cached snapshot for t.
func (c *LatestCache) Get(t model.ScanType) (model.LatestSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snaps[t]
	return snap, ok
}
