package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	n := 1000
	seen := make([]int32, n)
	For(n, cfg, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})

	for i, c := range seen {
		require.Equal(t, int32(1), c, "index %d", i)
	}
}

func TestChunksCoverRangeWithoutOverlap(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}

	var (
		mu     sync.Mutex
		ranges [][2]int
	)
	Chunks(100, cfg, func(start, end int) {
		mu.Lock()
		ranges = append(ranges, [2]int{start, end})
		mu.Unlock()
	})

	total := 0
	for _, r := range ranges {
		assert.Less(t, r[0], r[1])
		total += r[1] - r[0]
	}
	assert.Equal(t, 100, total)
	assert.Len(t, ranges, 3)
}

func TestChunksSmallInputRunsOnce(t *testing.T) {
	calls := 0
	Chunks(10, DefaultConfig(), func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestChunksSequentialAndEmpty(t *testing.T) {
	calls := 0
	Chunks(1<<20, Sequential(), func(start, end int) {
		calls++
	})
	assert.Equal(t, 1, calls)

	Chunks(0, DefaultConfig(), func(start, end int) {
		t.Fatal("f called for empty range")
	})
}

func BenchmarkFor(b *testing.B) {
	n := 1 << 16

	b.Run("parallel", func(b *testing.B) {
		cfg := DefaultConfig()
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, cfg, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, Sequential(), func(i int) {
				atomic.AddInt64(&sum, int64(i))
			})
		}
	})
}
