// Package ratelimit ограничивает частоту HTTP запросов к демону.
// Поддерживает sliding window и token bucket поверх памяти процесса
// или Redis, когда лимит должен разделяться между репликами.
package ratelimit

import (
	"context"
	"errors"
	"time"

	"beltflow/pkg/config"
)

// Стратегии подсчёта запросов.
const (
	// StrategySlidingWindow учитывает точные метки времени запросов в окне.
	StrategySlidingWindow = "sliding_window"
	// StrategyTokenBucket пополняет токены с постоянной скоростью.
	StrategyTokenBucket = "token_bucket"
)

// Бэкенды хранения состояния лимитов.
const (
	// BackendMemory хранит счётчики в памяти процесса.
	BackendMemory = "memory"
	// BackendRedis разделяет счётчики между репликами через Redis.
	BackendRedis = "redis"
)

// ErrLimiterClosed возвращается при обращении к закрытому лимитеру.
var ErrLimiterClosed = errors.New("limiter is closed")

// Limiter интерфейс ограничителя запросов
type Limiter interface {
	// Allow проверяет, разрешён ли запрос для ключа
	Allow(ctx context.Context, key string) (bool, error)

	// GetInfo возвращает текущее состояние лимита для ключа
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)

	// Reset сбрасывает лимит для ключа
	Reset(ctx context.Context, key string) error

	// Close закрывает лимитер
	Close() error
}

// LimitInfo информация о состоянии лимита
type LimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Options параметры лимитера
type Options struct {
	// Requests количество запросов на окно
	Requests int

	// Window временное окно
	Window time.Duration

	// Strategy стратегия подсчёта (sliding_window, token_bucket)
	Strategy string

	// Backend хранилище (memory, redis)
	Backend string

	// BurstSize дополнительный запас для token bucket
	BurstSize int

	// CleanupInterval интервал очистки простаивающих ключей для in-memory
	CleanupInterval time.Duration

	// Redis настройки Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() *Options {
	return &Options{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         BackendMemory,
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
		RedisAddr:       "localhost:6379",
	}
}

// FromConfig создаёт опции из конфигурации
func FromConfig(cfg *config.RateLimitConfig) *Options {
	return &Options{
		Requests:        cfg.Requests,
		Window:          cfg.Window,
		Strategy:        cfg.Strategy,
		Backend:         cfg.Backend,
		BurstSize:       cfg.BurstSize,
		CleanupInterval: cfg.CleanupInterval,
		RedisAddr:       cfg.Address(),
		RedisPassword:   cfg.Password,
		RedisDB:         cfg.DB,
	}
}

// New создаёт лимитер на основе опций
func New(opts *Options) (Limiter, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch opts.Backend {
	case BackendRedis:
		return NewRedisLimiter(opts)
	case BackendMemory, "":
		return NewMemoryLimiter(opts), nil
	default:
		return NewMemoryLimiter(opts), nil
	}
}
