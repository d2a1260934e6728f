//go:build integration

package pkg_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"beltflow/pkg/cache"
	"beltflow/pkg/domain"
	"beltflow/tests/integration/testutil"
)

func TestRedisCache_SetGetDelete(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:    cache.BackendRedis,
		RedisAddr:  addr,
		DefaultTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	key := testutil.UniqueKey(t, "cache")

	// Set
	err = c.Set(ctx, key, []byte("test-value"), time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Get
	val, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != "test-value" {
		t.Errorf("value = %s, want test-value", string(val))
	}

	// Delete
	err = c.Delete(ctx, key)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Verify deleted
	_, err = c.Get(ctx, key)
	if err != cache.ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}
}

func TestRedisCache_Exists(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	key := testutil.UniqueKey(t, "exists")

	// Should not exist
	exists, err := c.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("key should not exist initially")
	}

	// Set
	c.Set(ctx, key, []byte("value"), time.Minute)

	// Should exist
	exists, err = c.Exists(ctx, key)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("key should exist after set")
	}

	// Cleanup
	c.Delete(ctx, key)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	key := testutil.UniqueKey(t, "ttl")

	// Set with short TTL
	err = c.Set(ctx, key, []byte("value"), 200*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Should exist immediately
	_, err = c.Get(ctx, key)
	if err != nil {
		t.Fatalf("should exist immediately: %v", err)
	}

	// Wait for expiry
	time.Sleep(300 * time.Millisecond)

	// Should be expired
	_, err = c.Get(ctx, key)
	if err != cache.ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound after TTL, got %v", err)
	}
}

func TestRedisCache_GetWithTTL(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	key := testutil.UniqueKey(t, "getttl")

	err = c.Set(ctx, key, []byte("value"), time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ttl, err := c.GetWithTTL(ctx, key)
	if err != nil {
		t.Fatalf("GetWithTTL failed: %v", err)
	}
	if string(val) != "value" {
		t.Errorf("value = %s, want value", string(val))
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within (0, 1m]", ttl)
	}

	c.Delete(ctx, key)
}

func TestRedisCache_Keys_DeleteByPattern(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	prefix := testutil.UniqueKey(t, "pattern")
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("%s:%d", prefix, i)
		if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := c.Keys(ctx, prefix+":*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 5 {
		t.Errorf("len(keys) = %d, want 5", len(keys))
	}

	deleted, err := c.DeleteByPattern(ctx, prefix+":*")
	if err != nil {
		t.Fatalf("DeleteByPattern failed: %v", err)
	}
	if deleted != 5 {
		t.Errorf("deleted = %d, want 5", deleted)
	}

	keys, err = c.Keys(ctx, prefix+":*")
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("len(keys) = %d after delete, want 0", len(keys))
	}
}

func TestRedisCache_Stats(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	key := testutil.UniqueKey(t, "stats")
	c.Set(ctx, key, []byte("value"), time.Minute)

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Backend != cache.BackendRedis {
		t.Errorf("Backend = %s, want %s", stats.Backend, cache.BackendRedis)
	}
	if stats.TotalKeys < 1 {
		t.Errorf("TotalKeys = %d, want >= 1", stats.TotalKeys)
	}

	c.Delete(ctx, key)
}

func TestRedisCache_Concurrent(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	prefix := testutil.UniqueKey(t, "concurrent")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("%s:%d", prefix, n)
			if err := c.Set(ctx, key, []byte("value"), time.Minute); err != nil {
				t.Errorf("Set failed: %v", err)
				return
			}
			if _, err := c.Get(ctx, key); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	deleted, err := c.DeleteByPattern(ctx, prefix+":*")
	if err != nil {
		t.Fatalf("DeleteByPattern failed: %v", err)
	}
	if deleted != 50 {
		t.Errorf("deleted = %d, want 50", deleted)
	}
}

func TestRedisCache_SolverCache(t *testing.T) {
	addr := testutil.RequireRedis(t)
	ctx, cancel := testutil.Context(t)
	defer cancel()

	c, err := cache.NewRedisCache(&cache.Options{
		Backend:   cache.BackendRedis,
		RedisAddr: addr,
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	testutil.Cleanup(t, func() { c.Close() })

	sc := cache.NewSolverCache(c, time.Minute)

	problem := &domain.Problem{
		Sources: map[string]float64{"mine": 100},
		Sink:    "factory",
		Edges: []domain.Edge{
			{From: "mine", To: "belt", Upper: 60},
			{From: "belt", To: "factory", Upper: 60},
		},
	}

	// Хэш задачи детерминирован, чистим следы прошлых запусков
	if err := sc.Invalidate(ctx, problem); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}

	// Miss before set
	_, found, err := sc.Get(ctx, problem, "dinic")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("result should not be cached yet")
	}

	result := &cache.CachedSolveResult{
		Verdict:       "ok",
		MaxFlowPerMin: 60,
		Flows: []domain.EdgeFlow{
			{From: "mine", To: "belt", Flow: 60},
			{From: "belt", To: "factory", Flow: 60},
		},
		ComputedAt: time.Now(),
	}
	if err := sc.Set(ctx, problem, "dinic", result, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Hit after set, round-tripped through Redis
	cached, found, err := sc.Get(ctx, problem, "dinic")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found {
		t.Fatal("result should be cached")
	}
	if cached.MaxFlowPerMin != 60 {
		t.Errorf("MaxFlowPerMin = %f, want 60", cached.MaxFlowPerMin)
	}
	if len(cached.Flows) != 2 {
		t.Errorf("len(Flows) = %d, want 2", len(cached.Flows))
	}

	// Another algorithm has its own slot
	_, found, err = sc.Get(ctx, problem, "edmonds_karp")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("different algorithm should not share the cached result")
	}

	if err := sc.Invalidate(ctx, problem); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	_, found, _ = sc.Get(ctx, problem, "dinic")
	if found {
		t.Error("result should be gone after invalidation")
	}
}
