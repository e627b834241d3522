// Package store keeps the loaded yearly snapshots in memory.
package store

import (
	"maps"
	"slices"
	"sync"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

// SnapshotCache maps years to snapshots. A year is either absent (not loaded
// yet) or present with a complete snapshot; entries are replaced wholesale,
// never edited. Crossing years are stored alongside so readers see a
// consistent pair.
type SnapshotCache struct {
	mu        sync.RWMutex
	years     map[int]*domain.YearlySnapshot
	crossings map[int]int
}

// New returns an empty cache.
func New() *SnapshotCache {
	return &SnapshotCache{
		years:     make(map[int]*domain.YearlySnapshot),
		crossings: make(map[int]int),
	}
}

// Snapshot implements domain.SnapshotStore.
func (c *SnapshotCache) Snapshot(year int) (*domain.YearlySnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.years[year]
	return s, ok
}

// Put stores snap under its year, replacing any previous entry.
func (c *SnapshotCache) Put(snap *domain.YearlySnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.years[snap.Year] = snap
}

// Years returns the stored years in ascending order.
func (c *SnapshotCache) Years() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.years))
}

// YearsWithStatus returns, in ascending order, the years whose snapshot has
// one of the given statuses.
func (c *SnapshotCache) YearsWithStatus(statuses ...domain.LoadStatus) []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []int
	for year, s := range c.years {
		if slices.Contains(statuses, s.Status) {
			out = append(out, year)
		}
	}
	slices.Sort(out)
	return out
}

// Len is the number of stored years.
func (c *SnapshotCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.years)
}

// SetCrossings replaces the crossing table.
func (c *SnapshotCache) SetCrossings(crossings map[int]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.crossings = maps.Clone(crossings)
}

// Crossings returns a copy of the crossing table.
func (c *SnapshotCache) Crossings() map[int]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.crossings)
}
