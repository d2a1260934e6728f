package ratelimit

import (
	"context"
	"testing"
	"time"

	"beltflow/pkg/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Requests <= 0 {
		t.Error("Requests should be positive")
	}
	if opts.Window <= 0 {
		t.Error("Window should be positive")
	}
	if opts.Strategy != StrategySlidingWindow {
		t.Errorf("Strategy = %q, want %q", opts.Strategy, StrategySlidingWindow)
	}
	if opts.Backend != BackendMemory {
		t.Errorf("Backend = %q, want %q", opts.Backend, BackendMemory)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := &config.RateLimitConfig{
		Enabled:         true,
		Requests:        50,
		Window:          30 * time.Second,
		Strategy:        "token_bucket",
		Backend:         "redis",
		BurstSize:       5,
		CleanupInterval: time.Minute,
		Host:            "redis.local",
		Port:            6380,
		Password:        "secret",
		DB:              2,
	}

	opts := FromConfig(cfg)

	if opts.Requests != 50 {
		t.Errorf("Requests = %d, want 50", opts.Requests)
	}
	if opts.Window != 30*time.Second {
		t.Errorf("Window = %v, want 30s", opts.Window)
	}
	if opts.Strategy != StrategyTokenBucket {
		t.Errorf("Strategy = %q, want %q", opts.Strategy, StrategyTokenBucket)
	}
	if opts.Backend != BackendRedis {
		t.Errorf("Backend = %q, want %q", opts.Backend, BackendRedis)
	}
	if opts.RedisAddr != "redis.local:6380" {
		t.Errorf("RedisAddr = %q, want redis.local:6380", opts.RedisAddr)
	}
	if opts.RedisPassword != "secret" {
		t.Errorf("RedisPassword = %q, want secret", opts.RedisPassword)
	}
	if opts.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", opts.RedisDB)
	}
}

func TestNewMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(nil)
	defer limiter.Close()

	if limiter == nil {
		t.Fatal("NewMemoryLimiter returned nil")
	}
}

func TestMemoryLimiter_Allow(t *testing.T) {
	opts := &Options{
		Requests:        5,
		Window:          time.Second,
		Strategy:        StrategySlidingWindow,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()
	key := "test-key"

	// First 5 requests should be allowed
	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be denied
	allowed, err := limiter.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Error("6th request should be denied")
	}
}

func TestMemoryLimiter_WindowExpiry(t *testing.T) {
	opts := &Options{
		Requests:        2,
		Window:          50 * time.Millisecond,
		Strategy:        StrategySlidingWindow,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()
	key := "test-key"

	limiter.Allow(ctx, key)
	limiter.Allow(ctx, key)

	allowed, _ := limiter.Allow(ctx, key)
	if allowed {
		t.Error("3rd request inside the window should be denied")
	}

	// После истечения окна запросы снова проходят
	time.Sleep(80 * time.Millisecond)

	allowed, _ = limiter.Allow(ctx, key)
	if !allowed {
		t.Error("request after window expiry should be allowed")
	}
}

func TestMemoryLimiter_PerKeyIsolation(t *testing.T) {
	opts := &Options{
		Requests:        1,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()

	allowed, _ := limiter.Allow(ctx, "client-a")
	if !allowed {
		t.Error("first request for client-a should be allowed")
	}

	allowed, _ = limiter.Allow(ctx, "client-a")
	if allowed {
		t.Error("second request for client-a should be denied")
	}

	// Лимит одного клиента не влияет на другого
	allowed, _ = limiter.Allow(ctx, "client-b")
	if !allowed {
		t.Error("first request for client-b should be allowed")
	}
}

func TestMemoryLimiter_Reset(t *testing.T) {
	opts := &Options{
		Requests:        2,
		Window:          time.Second,
		Strategy:        StrategySlidingWindow,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()
	key := "test-key"

	// Use up the limit
	limiter.Allow(ctx, key)
	limiter.Allow(ctx, key)

	allowed, _ := limiter.Allow(ctx, key)
	if allowed {
		t.Error("should be rate limited")
	}

	if err := limiter.Reset(ctx, key); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	allowed, _ = limiter.Allow(ctx, key)
	if !allowed {
		t.Error("should be allowed after reset")
	}
}

func TestMemoryLimiter_GetInfo(t *testing.T) {
	opts := &Options{
		Requests:        10,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()
	key := "test-key"

	// Initial state
	info, err := limiter.GetInfo(ctx, key)
	if err != nil {
		t.Fatalf("GetInfo() error = %v", err)
	}
	if info.Limit != 10 {
		t.Errorf("Limit = %d, want 10", info.Limit)
	}
	if info.Remaining != 10 {
		t.Errorf("Remaining = %d, want 10", info.Remaining)
	}

	// After some requests
	limiter.Allow(ctx, key)
	limiter.Allow(ctx, key)

	info, _ = limiter.GetInfo(ctx, key)
	if info.Remaining != 8 {
		t.Errorf("Remaining = %d, want 8", info.Remaining)
	}
	if info.ResetAt.Before(time.Now()) {
		t.Error("ResetAt should be in the future")
	}
}

func TestMemoryLimiter_TokenBucket(t *testing.T) {
	opts := &Options{
		Requests:        5,
		Window:          time.Second,
		Strategy:        StrategyTokenBucket,
		BurstSize:       2,
		CleanupInterval: time.Minute,
	}
	limiter := NewMemoryLimiter(opts)
	defer limiter.Close()

	ctx := context.Background()
	key := "test-key"

	// Should allow up to Requests + BurstSize
	for i := 0; i < 7; i++ {
		allowed, _ := limiter.Allow(ctx, key)
		if !allowed {
			t.Errorf("Request %d should be allowed with burst", i+1)
		}
	}

	allowed, _ := limiter.Allow(ctx, key)
	if allowed {
		t.Error("request beyond burst should be denied")
	}
}

func TestMemoryLimiter_Close(t *testing.T) {
	limiter := NewMemoryLimiter(nil)

	err := limiter.Close()
	if err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Double close should not error
	err = limiter.Close()
	if err != nil {
		t.Errorf("Double Close() error = %v", err)
	}

	// Operations after close should fail
	ctx := context.Background()
	_, err = limiter.Allow(ctx, "key")
	if err != ErrLimiterClosed {
		t.Errorf("Allow after close should return ErrLimiterClosed, got %v", err)
	}
}

func TestNew(t *testing.T) {
	t.Run("memory backend", func(t *testing.T) {
		limiter, err := New(&Options{
			Backend:         BackendMemory,
			Requests:        10,
			Window:          time.Second,
			CleanupInterval: time.Minute,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer limiter.Close()
	})

	t.Run("default backend", func(t *testing.T) {
		limiter, err := New(&Options{
			Backend:         "",
			Requests:        10,
			Window:          time.Second,
			CleanupInterval: time.Minute,
		})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer limiter.Close()
	})

	t.Run("nil options", func(t *testing.T) {
		limiter, err := New(nil)
		if err != nil {
			t.Fatalf("New(nil) error = %v", err)
		}
		defer limiter.Close()
	})
}
