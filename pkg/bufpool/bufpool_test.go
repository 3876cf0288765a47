package bufpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Tier Selection
// ============================================================================

func TestTierSelection(t *testing.T) {
	pool := NewPool(DefaultConfig())

	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"Zero", 0, DefaultSmallSize},
		{"Small", 1000, DefaultSmallSize},
		{"SmallBoundary", DefaultSmallSize, DefaultSmallSize},
		{"JustAboveSmall", DefaultSmallSize + 1, DefaultMediumSize},
		{"MediumBoundary", DefaultMediumSize, DefaultMediumSize},
		{"JustAboveMedium", DefaultMediumSize + 1, DefaultLargeSize},
		{"LargeBoundary", DefaultLargeSize, DefaultLargeSize},
		{"Oversized", DefaultLargeSize + 1, DefaultLargeSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := pool.Get(tt.size)
			defer pool.Put(buf)

			assert.Equal(t, tt.size, len(buf))
			assert.Equal(t, tt.wantCap, cap(buf))
		})
	}
}

func TestCustomTiers(t *testing.T) {
	t.Run("UnsortedWithDuplicates", func(t *testing.T) {
		pool := NewPool(Config{Sizes: []int{8192, 1024, -1, 8192, 0, 65536}})
		assert.Equal(t, []int{1024, 8192, 65536}, pool.Sizes())

		assert.Equal(t, 1024, cap(pool.Get(500)))
		assert.Equal(t, 8192, cap(pool.Get(2000)))
		assert.Equal(t, 65536, cap(pool.Get(10000)))
	})

	t.Run("EmptyConfigUsesDefaults", func(t *testing.T) {
		pool := NewPool(Config{})
		assert.Equal(t, DefaultConfig().Sizes, pool.Sizes())
	})

	t.Run("ConfigNotModified", func(t *testing.T) {
		sizes := []int{300, 100, 200}
		NewPool(Config{Sizes: sizes})
		assert.Equal(t, []int{300, 100, 200}, sizes)
	})
}

// ============================================================================
// Put, Reuse and Stats
// ============================================================================

func TestPutAndStats(t *testing.T) {
	pool := NewPool(Config{Sizes: []int{1024}})

	buf := pool.Get(100)
	pool.Put(buf)
	pool.Put(nil)
	pool.Put(make([]byte, 10))
	pool.Put(pool.Get(4096))

	assert.Equal(t, Stats{Gets: 2, Puts: 1, Oversized: 1}, pool.Stats())
}

func TestPutRestoresFullLength(t *testing.T) {
	pool := NewPool(Config{Sizes: []int{1024}})

	pool.Put(pool.Get(10))
	buf := pool.Get(1024)
	defer pool.Put(buf)

	assert.Len(t, buf, 1024)
}

func TestCopy(t *testing.T) {
	src := []byte{1, 2, 3, 4}

	dst := Copy(src)
	defer Put(dst)

	assert.Equal(t, src, dst)
	assert.Equal(t, DefaultSmallSize, cap(dst))

	dst[0] = 9
	assert.Equal(t, byte(1), src[0])
}

func TestGlobalPool(t *testing.T) {
	before := GlobalStats()

	buf := Get(10)
	Put(buf)

	after := GlobalStats()
	assert.Equal(t, before.Gets+1, after.Gets)
	assert.Equal(t, before.Puts+1, after.Puts)

	require.NotPanics(t, func() {
		Put(nil)
		Put([]byte{})
	})
}

// ============================================================================
// Concurrency Tests
// ============================================================================

func TestConcurrentGetAndPut(t *testing.T) {
	pool := NewPool(Config{Sizes: []int{512, 4096, 32768}})

	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := range goroutines {
		go func() {
			defer wg.Done()
			for j := range iterations {
				buf := pool.Get((i*100 + j) % 40000)
				for k := range buf {
					buf[k] = byte(i)
				}
				pool.Put(buf)
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, uint64(goroutines*iterations), pool.Stats().Gets)
}

// ============================================================================
// Benchmark Tests
// ============================================================================

func BenchmarkGet(b *testing.B) {
	for _, size := range []int{DefaultSmallSize, DefaultMediumSize, DefaultLargeSize} {
		b.Run(sizeName(size), func(b *testing.B) {
			for b.Loop() {
				Put(Get(size))
			}
		})
	}
}

func BenchmarkGetParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Put(Get(DefaultMediumSize))
		}
	})
}

func sizeName(n int) string {
	switch n {
	case DefaultSmallSize:
		return "Small"
	case DefaultMediumSize:
		return "Medium"
	default:
		return "Large"
	}
}
