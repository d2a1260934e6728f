package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "BELTFLOW_"
	configEnvVar = "CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"configs/config.yaml",
			"/etc/beltflow/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths задаёт пути поиска конфигурационного файла
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix задаёт префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// Load загружает конфигурацию: defaults -> yaml -> env
func (l *Loader) Load() (*Config, error) {
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (l *Loader) loadDefaults() error {
	defaults := map[string]interface{}{
		"app.name":        "beltflow",
		"app.version":     "dev",
		"app.environment": "development",
		"app.debug":       false,

		"http.port":             8080,
		"http.read_timeout":     30 * time.Second,
		"http.write_timeout":    30 * time.Second,
		"http.shutdown_timeout": 10 * time.Second,
		"http.max_body_bytes":   int64(10 << 20),

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stderr",
		"log.file_path":   "logs/beltflow.log",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     28,
		"log.compress":    true,

		"metrics.enabled":   true,
		"metrics.port":      9090,
		"metrics.path":      "/metrics",
		"metrics.namespace": "beltflow",
		"metrics.subsystem": "",

		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "beltflow",
		"tracing.sample_rate":  0.1,

		"cache.enabled":     false,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.password":    "",
		"cache.db":          0,
		"cache.default_ttl": 5 * time.Minute,
		"cache.max_entries": 10000,

		"rate_limit.enabled":          false,
		"rate_limit.requests":         100,
		"rate_limit.window":           time.Minute,
		"rate_limit.strategy":         "sliding_window",
		"rate_limit.backend":          "memory",
		"rate_limit.burst_size":       10,
		"rate_limit.cleanup_interval": 5 * time.Minute,
		"rate_limit.host":             "localhost",
		"rate_limit.port":             6379,
		"rate_limit.password":         "",
		"rate_limit.db":               0,

		"solver.algorithm":      "dinic",
		"solver.timeout":        30 * time.Second,
		"solver.max_iterations": 1000000,
		"solver.max_concurrent": 8,

		"report.company_name":       "Beltflow",
		"report.max_edges_in_table": 50,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

func (l *Loader) loadConfigFile() error {
	// Сначала проверяем явно указанный путь
	if path := os.Getenv(configEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return l.k.Load(file.Provider(path), yaml.Parser())
		}
	}

	// Ищем конфиг по стандартным путям
	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			if err := l.k.Load(file.Provider(absPath), yaml.Parser()); err != nil {
				return fmt.Errorf("failed to parse config file %s: %w", absPath, err)
			}
			return nil
		}
	}

	// Конфигурационный файл не обязателен, работаем на defaults + env
	return nil
}

func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, l.envPrefix))

		// BELTFLOW_HTTP_READ_TIMEOUT -> http.read_timeout
		if mapped, ok := envKeyMappings[key]; ok {
			return mapped, value
		}

		return strings.ReplaceAll(key, "_", "."), value
	}), nil)
}

// envKeyMappings - ключи с подчёркиванием в имени поля
var envKeyMappings = map[string]string{
	"http_read_timeout":           "http.read_timeout",
	"http_write_timeout":          "http.write_timeout",
	"http_shutdown_timeout":       "http.shutdown_timeout",
	"http_max_body_bytes":         "http.max_body_bytes",
	"log_file_path":               "log.file_path",
	"log_max_size":                "log.max_size",
	"log_max_backups":             "log.max_backups",
	"log_max_age":                 "log.max_age",
	"cache_default_ttl":           "cache.default_ttl",
	"cache_max_entries":           "cache.max_entries",
	"rate_limit_enabled":          "rate_limit.enabled",
	"rate_limit_requests":         "rate_limit.requests",
	"rate_limit_window":           "rate_limit.window",
	"rate_limit_strategy":         "rate_limit.strategy",
	"rate_limit_backend":          "rate_limit.backend",
	"rate_limit_burst_size":       "rate_limit.burst_size",
	"rate_limit_cleanup_interval": "rate_limit.cleanup_interval",
	"rate_limit_host":             "rate_limit.host",
	"rate_limit_port":             "rate_limit.port",
	"rate_limit_password":         "rate_limit.password",
	"rate_limit_db":               "rate_limit.db",
	"solver_max_iterations":       "solver.max_iterations",
	"solver_max_concurrent":       "solver.max_concurrent",
	"tracing_service_name":        "tracing.service_name",
	"tracing_sample_rate":         "tracing.sample_rate",
	"report_company_name":         "report.company_name",
	"report_max_edges_in_table":   "report.max_edges_in_table",
}

// MustLoad загружает конфигурацию или паникует
func MustLoad(opts ...LoaderOption) *Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Load загружает конфигурацию с опциями
func Load(opts ...LoaderOption) (*Config, error) {
	return NewLoader(opts...).Load()
}
