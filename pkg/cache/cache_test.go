package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 10)

	c.Set("directory", "snapshot")

	value, found := c.Get("directory")
	require.True(t, found)
	assert.Equal(t, "snapshot", value)
}

func TestCache_MissingKey(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 10)

	_, found := c.Get("nope")
	assert.False(t, found)
}

func TestCache_Expiration(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 10)

	c.SetWithExpiration("short", "lived", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("short")
	assert.False(t, found)
}

func TestCache_Delete(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 10)

	c.Set("key", "value")
	c.Delete("key")

	_, found := c.Get("key")
	assert.False(t, found)
}

func TestCache_EvictsWhenFull(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Count())

	_, found := c.Get("c")
	assert.True(t, found, "newest entry must survive eviction")
}

func TestCache_Flush(t *testing.T) {
	c := NewCacheWith(time.Minute, 0, 10)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Flush()

	assert.Equal(t, 0, c.Count())
}
