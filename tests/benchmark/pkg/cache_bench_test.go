package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"beltflow/pkg/cache"
	"beltflow/pkg/domain"
)

func BenchmarkMemoryCache_Set(b *testing.B) {
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := make([]byte, 1024) // 1KB value

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i%10000), value, time.Minute)
	}
}

func BenchmarkMemoryCache_Get(b *testing.B) {
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "benchmark-key", []byte("benchmark-value"), time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(ctx, "benchmark-key")
	}
}

func BenchmarkMemoryCache_SetGet(b *testing.B) {
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := []byte("benchmark-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("key-%d", i%1000)
		c.Set(ctx, key, value, time.Minute)
		c.Get(ctx, key)
	}
}

func BenchmarkMemoryCache_Concurrent(b *testing.B) {
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	ctx := context.Background()
	value := []byte("benchmark-value")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d", i%1000)
			if i%2 == 0 {
				c.Set(ctx, key, value, time.Minute)
			} else {
				c.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkMemoryCache_ValueSizes(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096, 16384, 65536}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			c := cache.NewMemoryCache(nil)
			defer c.Close()

			ctx := context.Background()
			value := make([]byte, size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				key := fmt.Sprintf("key-%d", i%100)
				c.Set(ctx, key, value, time.Minute)
				c.Get(ctx, key)
			}
		})
	}
}

func BenchmarkMemoryCache_Eviction(b *testing.B) {
	c := cache.NewMemoryCache(&cache.Options{
		MaxEntries:      1000,
		CleanupInterval: time.Hour,
	})
	defer c.Close()

	ctx := context.Background()
	value := []byte("benchmark-value")

	// Каждая вставка сверх лимита вытесняет самый старый ключ
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), value, time.Minute)
	}
}

func BenchmarkSolverCache_SetGet(b *testing.B) {
	c := cache.NewMemoryCache(nil)
	defer c.Close()

	sc := cache.NewSolverCache(c, 10*time.Minute)
	ctx := context.Background()
	problem := createBenchmarkProblem(100)
	result := &cache.CachedSolveResult{
		Verdict:       "ok",
		MaxFlowPerMin: 42.5,
		ComputedAt:    time.Now(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sc.Set(ctx, problem, "dinic", result, time.Minute)
		sc.Get(ctx, problem, "dinic")
	}
}

func BenchmarkSolverCache_Get_Hit(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			c := cache.NewMemoryCache(nil)
			defer c.Close()

			sc := cache.NewSolverCache(c, 10*time.Minute)
			ctx := context.Background()
			problem := createBenchmarkProblem(size)
			result := &cache.CachedSolveResult{
				Verdict:       "ok",
				MaxFlowPerMin: 42.5,
				ComputedAt:    time.Now(),
			}
			sc.Set(ctx, problem, "dinic", result, time.Minute)

			// Каждое чтение хэширует задачу заново
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sc.Get(ctx, problem, "dinic")
			}
		})
	}
}

func createBenchmarkProblem(nodes int) *domain.Problem {
	edges := make([]domain.Edge, nodes-1)
	for i := 0; i < nodes-1; i++ {
		edges[i] = domain.Edge{
			From:  fmt.Sprintf("n%d", i),
			To:    fmt.Sprintf("n%d", i+1),
			Upper: 100,
		}
	}
	return &domain.Problem{
		Sources: map[string]float64{"n0": 1000},
		Sink:    fmt.Sprintf("n%d", nodes-1),
		Edges:   edges,
	}
}
