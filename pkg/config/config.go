// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App       AppConfig       `koanf:"app"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Tracing   TracingConfig   `koanf:"tracing"`
	Cache     CacheConfig     `koanf:"cache"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Solver    SolverConfig    `koanf:"solver"`
	Report    ReportConfig    `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// HTTPConfig - настройки HTTP сервера
type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stderr, stdout, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэширования результатов
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // redis, memory
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig - настройки ограничения частоты запросов
type RateLimitConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Requests        int           `koanf:"requests"`
	Window          time.Duration `koanf:"window"`
	Strategy        string        `koanf:"strategy"` // sliding_window, token_bucket
	Backend         string        `koanf:"backend"`  // memory, redis
	BurstSize       int           `koanf:"burst_size"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	Host            string        `koanf:"host"` // для backend redis
	Port            int           `koanf:"port"`
	Password        string        `koanf:"password"`
	DB              int           `koanf:"db"`
}

// Address возвращает адрес Redis для лимитера
func (c RateLimitConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SolverConfig - настройки решателя потоковых задач
type SolverConfig struct {
	Algorithm     string        `koanf:"algorithm"` // dinic, edmonds_karp
	Timeout       time.Duration `koanf:"timeout"`
	MaxIterations int           `koanf:"max_iterations"`
	MaxConcurrent int           `koanf:"max_concurrent"` // одновременные решения в демоне
}

// ReportConfig - настройки генерации отчётов
type ReportConfig struct {
	CompanyName     string `koanf:"company_name"`       // Шапка отчёта
	MaxEdgesInTable int    `koanf:"max_edges_in_table"` // Максимум рёбер в таблице отчёта
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validAlgorithms := map[string]bool{"dinic": true, "edmonds_karp": true}
	if !validAlgorithms[c.Solver.Algorithm] {
		errs = append(errs, fmt.Sprintf("solver.algorithm must be one of: dinic, edmonds_karp, got %s", c.Solver.Algorithm))
	}

	if c.Solver.Timeout <= 0 {
		errs = append(errs, "solver.timeout must be positive")
	}

	validDrivers := map[string]bool{"memory": true, "redis": true}
	if c.Cache.Enabled && !validDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, got %s", c.Cache.Driver))
	}

	if c.RateLimit.Enabled {
		if !validDrivers[c.RateLimit.Backend] {
			errs = append(errs, fmt.Sprintf("rate_limit.backend must be one of: memory, redis, got %s", c.RateLimit.Backend))
		}

		validStrategies := map[string]bool{"sliding_window": true, "token_bucket": true}
		if !validStrategies[c.RateLimit.Strategy] {
			errs = append(errs, fmt.Sprintf("rate_limit.strategy must be one of: sliding_window, token_bucket, got %s", c.RateLimit.Strategy))
		}

		if c.RateLimit.Requests <= 0 {
			errs = append(errs, "rate_limit.requests must be positive")
		}

		if c.RateLimit.Window <= 0 {
			errs = append(errs, "rate_limit.window must be positive")
		}
	}

	if c.Report.MaxEdgesInTable < 0 {
		errs = append(errs, "report.max_edges_in_table must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
