package parallel

import (
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor2D(t *testing.T) {
	cfg := DefaultConfig()

	rows, cols := 4, 8
	results := make([][]bool, rows)
	for i := range results {
		results[i] = make([]bool, cols)
	}

	For2D(rows, cols, func(i, j int) {
		results[i][j] = true
	}, cfg)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if !results[i][j] {
				t.Errorf("Missing result at [%d][%d]", i, j)
			}
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Test that small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_EveryIndexVisitedOnce(t *testing.T) {
	cfg := DefaultConfig()

	n := 5000
	visits := make([]int32, n)

	For(n, func(i int) {
		atomic.AddInt32(&visits[i], 1)
	}, cfg)

	for i, v := range visits {
		if v != 1 {
			t.Fatalf("Index %d visited %d times, want 1", i, v)
		}
	}
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}

func BenchmarkFor2D(b *testing.B) {
	cfg := DefaultConfig()
	rows, cols := 16, 64

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For2D(rows, cols, func(i, j int) {
				atomic.AddInt64(&sum, int64(i*cols+j))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For2D(rows, cols, func(i, j int) {
				atomic.AddInt64(&sum, int64(i*cols+j))
			}, cfgSeq)
		}
	})
}
