package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("default_size", func(t *testing.T) {
		c := New[string, int](0)
		assert.Equal(t, 1000, c.Stats().MaxSize)
	})

	t.Run("custom_size", func(t *testing.T) {
		c := New[string, int](5)
		assert.Equal(t, 5, c.Stats().MaxSize)
		assert.Equal(t, 0, c.Len())
	})
}

func TestLRU_GetPut(t *testing.T) {
	c := New[string, []float32](10)

	_, ok := c.Get("dog")
	assert.False(t, ok)

	c.Put("dog", []float32{1, 2})
	v, ok := c.Get("dog")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, v)

	c.Put("dog", []float32{3})
	v, _ = c.Get("dog")
	assert.Equal(t, []float32{3}, v)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Eviction(t *testing.T) {
	c := New[int, string](3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")

	// touch 1 so 2 becomes the oldest
	_, _ = c.Get(1)
	c.Put(4, "d")

	_, ok := c.Get(2)
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestLRU_Clear(t *testing.T) {
	c := New[int, int](4)
	c.Put(1, 1)
	c.Put(2, 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok)
}

func TestLRU_Stats(t *testing.T) {
	c := New[string, int](10)
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("b")

	s := c.Stats()
	assert.Equal(t, uint64(2), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.InDelta(t, 66.67, s.HitRate, 0.01)
	assert.Equal(t, 1, s.Size)

	t.Run("zero_total", func(t *testing.T) {
		assert.Equal(t, 0.0, New[string, int](1).Stats().HitRate)
	})
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := New[string, int](50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("k%d", (g*31+i)%120)
				c.Put(k, i)
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
