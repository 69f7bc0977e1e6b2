package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeCachesValue(t *testing.T) {
	c := New[string](4)
	var calls int32

	compute := func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "snapshot", nil
	}

	v, err := c.GetOrCompute("k1", compute)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", v)

	v, err = c.GetOrCompute("k1", compute)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", v)
	assert.Equal(t, int32(1), calls, "second call must hit the cache")
}

func TestGetOrComputeErrorNotCached(t *testing.T) {
	c := New[string](4)
	boom := errors.New("boom")
	var calls int32

	_, err := c.GetOrCompute("k1", func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute("k1", func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, int32(2), calls, "failure must not poison the key")
}

func TestLRUEviction(t *testing.T) {
	c := New[int](2)

	_, _ = c.GetOrCompute("a", func() (int, error) { return 1, nil })
	_, _ = c.GetOrCompute("b", func() (int, error) { return 2, nil })

	// Touch a so b becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	_, _ = c.GetOrCompute("c", func() (int, error) { return 3, nil })

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestZeroCapacityComputesWithoutStoring(t *testing.T) {
	c := New[int](0)
	var calls int32

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute("k", func() (int, error) {
			atomic.AddInt32(&calls, 1)
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}

	assert.Equal(t, int32(3), calls)
}

func TestConcurrentGetOrComputeSharesFlight(t *testing.T) {
	c := New[int](4)
	var calls int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrCompute("k", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	close(start)
	wg.Wait()

	assert.LessOrEqual(t, calls, int32(2), "concurrent misses must coalesce")
}

func TestInvalidateAndPurge(t *testing.T) {
	c := New[int](4)
	_, _ = c.GetOrCompute("a", func() (int, error) { return 1, nil })
	_, _ = c.GetOrCompute("b", func() (int, error) { return 2, nil })

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Purge()
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats()["entries"])
}

func TestFingerprintStability(t *testing.T) {
	a := Fingerprint("dataset-1", map[string]int{"CS301": 4, "CS302": 3})
	b := Fingerprint("dataset-1", map[string]int{"CS302": 3, "CS301": 4})
	assert.Equal(t, a, b, "map key order must not change the fingerprint")

	c := Fingerprint("dataset-2", map[string]int{"CS301": 4, "CS302": 3})
	assert.NotEqual(t, a, c)

	// Part boundaries matter.
	assert.NotEqual(t, Fingerprint("ab", "c"), Fingerprint("a", "bc"))
	assert.Len(t, a, 64)
}

func TestStats(t *testing.T) {
	c := New[int](4)
	_, _ = c.GetOrCompute("a", func() (int, error) { return 1, nil })
	_, _ = c.Get("a")
	_, _ = c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, 1, stats["entries"])
	assert.Equal(t, int64(1), stats["hit_count"])
	assert.Equal(t, int64(2), stats["miss_count"])
}
