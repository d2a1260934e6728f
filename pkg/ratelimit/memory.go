package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter in-memory реализация rate limiter
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	opts    *Options
	stopCh  chan struct{}
	closed  bool
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
	requests  []time.Time // для sliding window
}

// NewMemoryLimiter создаёт in-memory rate limiter
func NewMemoryLimiter(opts *Options) *MemoryLimiter {
	if opts == nil {
		opts = DefaultOptions()
	}

	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		opts:    opts,
		stopCh:  make(chan struct{}),
	}

	go l.cleanup()

	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrLimiterClosed
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:    float64(l.opts.Requests + l.opts.BurstSize),
			lastCheck: time.Now(),
		}
		l.buckets[key] = b
	}

	switch l.opts.Strategy {
	case StrategyTokenBucket:
		return l.allowTokenBucket(b), nil
	default:
		return l.allowSlidingWindow(b), nil
	}
}

func (l *MemoryLimiter) allowTokenBucket(b *bucket) bool {
	now := time.Now()
	elapsed := now.Sub(b.lastCheck)
	b.lastCheck = now

	// Восполняем токены пропорционально прошедшему времени
	rate := float64(l.opts.Requests) / l.opts.Window.Seconds()
	b.tokens += elapsed.Seconds() * rate

	maxTokens := float64(l.opts.Requests + l.opts.BurstSize)
	if b.tokens > maxTokens {
		b.tokens = maxTokens
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}

	return false
}

func (l *MemoryLimiter) allowSlidingWindow(b *bucket) bool {
	now := time.Now()
	b.lastCheck = now
	windowStart := now.Add(-l.opts.Window)

	// Отбрасываем запросы, выпавшие из окна
	valid := b.requests[:0]
	for _, t := range b.requests {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	b.requests = valid

	if len(b.requests) < l.opts.Requests {
		b.requests = append(b.requests, now)
		return true
	}

	return false
}

func (l *MemoryLimiter) GetInfo(_ context.Context, key string) (*LimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLimiterClosed
	}

	info := &LimitInfo{
		Limit:   l.opts.Requests,
		ResetAt: time.Now().Add(l.opts.Window),
	}

	b, ok := l.buckets[key]
	if !ok {
		info.Remaining = l.opts.Requests
		return info, nil
	}

	switch l.opts.Strategy {
	case StrategyTokenBucket:
		info.Remaining = int(b.tokens)
	default:
		windowStart := time.Now().Add(-l.opts.Window)
		count := 0
		for _, t := range b.requests {
			if t.After(windowStart) {
				count++
			}
		}
		info.Remaining = l.opts.Requests - count
	}

	if info.Remaining < 0 {
		info.Remaining = 0
	}

	return info, nil
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrLimiterClosed
	}

	delete(l.buckets, key)
	return nil
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.stopCh)
	l.buckets = nil

	return nil
}

func (l *MemoryLimiter) cleanup() {
	interval := l.opts.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.doCleanup()
		}
	}
}

func (l *MemoryLimiter) doCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	// Ключ без обращений дольше двух окон считается мёртвым
	cutoff := time.Now().Add(-2 * l.opts.Window)
	for key, b := range l.buckets {
		if b.lastCheck.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
