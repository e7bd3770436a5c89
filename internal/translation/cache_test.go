package translation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetMiss(t *testing.T) {
	cache := NewCache(10)

	_, ok := cache.Get("ephemeral")

	assert.False(t, ok)
}

func TestCache_SetAndGet(t *testing.T) {
	cache := NewCache(10)

	cache.Set("ephemeral", "efímero", []string{"pasajero"})

	entry, ok := cache.Get("ephemeral")
	require.True(t, ok)
	assert.Equal(t, "efímero", entry.Translation)
	assert.Equal(t, []string{"pasajero"}, entry.Alternatives)
}

func TestCache_KeyIsNormalized(t *testing.T) {
	cache := NewCache(10)

	cache.Set("  Ephemeral ", "efímero", nil)

	entry, ok := cache.Get("ephemeral")
	require.True(t, ok)
	assert.Equal(t, "ephemeral", entry.Key)

	_, ok = cache.Get("EPHEMERAL\t")
	assert.True(t, ok)
}

func TestCache_SetRefreshesExistingKey(t *testing.T) {
	cache := NewCache(10)

	cache.Set("word", "first", nil)
	cache.Set("word", "second", nil)

	entry, ok := cache.Get("word")
	require.True(t, ok)
	assert.Equal(t, "second", entry.Translation)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(100)

	for i := 0; i < 100; i++ {
		cache.Set(fmt.Sprintf("word-%d", i), "t", nil)
	}
	require.Equal(t, 100, cache.Len())

	// The 101st distinct key evicts exactly the oldest entry.
	cache.Set("word-100", "t", nil)

	assert.Equal(t, 100, cache.Len())
	_, ok := cache.Get("word-0")
	assert.False(t, ok)
	_, ok = cache.Get("word-1")
	assert.True(t, ok)
}

func TestCache_GetProtectsFromEviction(t *testing.T) {
	cache := NewCache(3)

	cache.Set("a", "1", nil)
	cache.Set("b", "2", nil)
	cache.Set("c", "3", nil)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.Get("a")
	require.True(t, ok)

	cache.Set("d", "4", nil)

	_, ok = cache.Get("a")
	assert.True(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(10)
	cache.Set("a", "1", nil)
	cache.Set("b", "2", nil)

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
}

func TestCache_ZeroCapacityUsesDefault(t *testing.T) {
	cache := NewCache(0)

	for i := 0; i <= DefaultCacheCapacity; i++ {
		cache.Set(fmt.Sprintf("word-%d", i), "t", nil)
	}

	assert.Equal(t, DefaultCacheCapacity, cache.Len())
}

func TestCache_EmptyKeyIgnored(t *testing.T) {
	cache := NewCache(10)

	cache.Set("   ", "t", nil)

	assert.Equal(t, 0, cache.Len())
}
