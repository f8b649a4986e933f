package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_LRU(t *testing.T) {
	c := NewResultCache(2)
	a, b, d := &OrderExtraction{Path: "a"}, &OrderExtraction{Path: "b"}, &OrderExtraction{Path: "d"}

	c.Put("a", a)
	c.Put("b", b)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	// b is now least recently used
	c.Put("d", d)
	_, ok = c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("d")
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 75.0, stats.HitRate, 0.001)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.Capacity)
}

func TestResultCache_Update(t *testing.T) {
	c := NewResultCache(1)
	c.Put("k", &OrderExtraction{PageCount: 1})
	c.Put("k", &OrderExtraction{PageCount: 2})

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got.PageCount)
	assert.Equal(t, 1, c.Len())
}

func TestResultCache_Disabled(t *testing.T) {
	c := NewResultCache(0)
	c.Put("k", &OrderExtraction{})

	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestResultCache_Concurrent(t *testing.T) {
	c := NewResultCache(8)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			c.Put(key, &OrderExtraction{PageCount: i})
			c.Get(key)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 8)
}

func TestCacheKeyChangesWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("one"), 0o644))
	info1, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("longer"), 0o644))
	require.NoError(t, os.Chtimes(path, time.Now(), info1.ModTime().Add(time.Second)))
	info2, err := os.Stat(path)
	require.NoError(t, err)

	assert.NotEqual(t, CacheKey(path, info1), CacheKey(path, info2))
	assert.Equal(t, CacheKey(path, info2), CacheKey(path, info2))
}
