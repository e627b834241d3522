package store

import (
	"sync"
	"testing"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache(t *testing.T) {
	c := New()

	_, ok := c.Snapshot(2022)
	assert.False(t, ok)

	c.Put(domain.EmptySnapshot(2022, domain.StatusFailed))
	c.Put(domain.EmptySnapshot(1990, domain.StatusLoaded))
	c.Put(domain.EmptySnapshot(2050, domain.StatusAbsent))

	s, ok := c.Snapshot(2022)
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, []int{1990, 2022, 2050}, c.Years())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []int{2022}, c.YearsWithStatus(domain.StatusFailed, domain.StatusMalformed))

	c.Put(domain.EmptySnapshot(2022, domain.StatusLoaded))
	s, _ = c.Snapshot(2022)
	assert.Equal(t, domain.StatusLoaded, s.Status)
	assert.Empty(t, c.YearsWithStatus(domain.StatusFailed))
}

func TestSnapshotCache_CrossingsAreCopied(t *testing.T) {
	c := New()
	in := map[int]int{1: 2022}
	c.SetCrossings(in)
	in[2] = 2030

	out := c.Crossings()
	assert.Equal(t, map[int]int{1: 2022}, out)
	out[3] = 2100
	assert.Len(t, c.Crossings(), 1)
}

func TestSnapshotCache_ConcurrentWriters(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for year := 1990; year < 2036; year++ {
		wg.Add(1)
		go func(y int) {
			defer wg.Done()
			c.Put(domain.EmptySnapshot(y, domain.StatusLoaded))
			_, _ = c.Snapshot(y)
		}(year)
	}
	wg.Wait()
	assert.Equal(t, 46, c.Len())
}
