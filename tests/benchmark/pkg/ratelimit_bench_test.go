package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"beltflow/pkg/ratelimit"
)

func BenchmarkMemoryLimiter_Allow(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000000,
		Window:          time.Minute,
		Strategy:        ratelimit.StrategySlidingWindow,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(ctx, "benchmark-key")
	}
}

func BenchmarkMemoryLimiter_Allow_Parallel(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000000,
		Window:          time.Minute,
		Strategy:        ratelimit.StrategySlidingWindow,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.Allow(ctx, "benchmark-key")
		}
	})
}

func BenchmarkMemoryLimiter_Allow_MultipleKeys(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000,
		Window:          time.Minute,
		Strategy:        ratelimit.StrategySlidingWindow,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(ctx, fmt.Sprintf("key-%d", i%1000))
	}
}

func BenchmarkMemoryLimiter_TokenBucket(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000000,
		Window:          time.Minute,
		Strategy:        ratelimit.StrategyTokenBucket,
		BurstSize:       100,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.Allow(ctx, "benchmark-key")
	}
}

func BenchmarkMemoryLimiter_GetInfo(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	// Pre-populate
	for i := 0; i < 100; i++ {
		limiter.Allow(ctx, "info-key")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		limiter.GetInfo(ctx, "info-key")
	}
}

func BenchmarkMemoryLimiter_Reset(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000,
		Window:          time.Minute,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("reset-key-%d", i)
		limiter.Allow(ctx, key)
		limiter.Reset(ctx, key)
	}
}

func BenchmarkMemoryLimiter_HighContention(b *testing.B) {
	limiter := ratelimit.NewMemoryLimiter(&ratelimit.Options{
		Requests:        1000000,
		Window:          time.Minute,
		Strategy:        ratelimit.StrategySlidingWindow,
		CleanupInterval: time.Hour,
	})
	defer limiter.Close()

	ctx := context.Background()

	// Single key with high contention
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			limiter.Allow(ctx, "contention-key")
		}
	})
}
