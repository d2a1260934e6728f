package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Lua скрипт атомарно чистит окно, проверяет лимит и регистрирует запрос
var allowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, now .. ':' .. math.random())
		redis.call('PEXPIRE', key, window)
		return {1, limit - current - 1}
	end

	return {0, 0}
`)

// RedisLimiter Redis-based rate limiter со sliding window на sorted set
type RedisLimiter struct {
	client *redis.Client
	opts   *Options
}

// NewRedisLimiter создаёт Redis rate limiter
func NewRedisLimiter(opts *Options) (*RedisLimiter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.RedisAddr,
		Password: opts.RedisPassword,
		DB:       opts.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLimiter{
		client: client,
		opts:   opts,
	}, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMilli()
	window := l.opts.Window.Milliseconds()

	result, err := allowScript.Run(ctx, l.client, []string{redisKeyPrefix + key},
		l.opts.Requests, window, now).Slice()
	if err != nil {
		return false, fmt.Errorf("redis script error: %w", err)
	}

	if len(result) == 0 {
		return false, fmt.Errorf("unexpected empty result from redis script")
	}

	allowed, ok := result[0].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from redis script")
	}

	return allowed == 1, nil
}

func (l *RedisLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-l.opts.Window).UnixMilli()

	count, err := l.client.ZCount(ctx, redisKeyPrefix+key,
		strconv.FormatInt(windowStart, 10), "+inf").Result()
	if err != nil {
		return nil, err
	}

	remaining := l.opts.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &LimitInfo{
		Limit:     l.opts.Requests,
		Remaining: remaining,
		ResetAt:   now.Add(l.opts.Window),
	}, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKeyPrefix+key).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
