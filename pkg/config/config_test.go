package config

import (
	"testing"
	"time"
)

func validTestConfig() Config {
	return Config{
		App:    AppConfig{Name: "test-service"},
		HTTP:   HTTPConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
		Solver: SolverConfig{Algorithm: "dinic", Timeout: 30 * time.Second},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: true,
		},
		{
			name:    "invalid port - zero",
			mutate:  func(c *Config) { c.HTTP.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port - too high",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "invalid" },
			wantErr: true,
		},
		{
			name:    "empty log level defaults to info",
			mutate:  func(c *Config) { c.Log.Level = "" },
			wantErr: false,
		},
		{
			name:    "valid debug level",
			mutate:  func(c *Config) { c.Log.Level = "debug" },
			wantErr: false,
		},
		{
			name:    "invalid solver algorithm",
			mutate:  func(c *Config) { c.Solver.Algorithm = "ford_fulkerson" },
			wantErr: true,
		},
		{
			name:    "edmonds_karp algorithm",
			mutate:  func(c *Config) { c.Solver.Algorithm = "edmonds_karp" },
			wantErr: false,
		},
		{
			name:    "non-positive solver timeout",
			mutate:  func(c *Config) { c.Solver.Timeout = 0 },
			wantErr: true,
		},
		{
			name: "cache enabled with unknown driver",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Driver = "memcached"
			},
			wantErr: true,
		},
		{
			name: "cache disabled ignores driver",
			mutate: func(c *Config) {
				c.Cache.Enabled = false
				c.Cache.Driver = "memcached"
			},
			wantErr: false,
		},
		{
			name: "rate limit enabled with unknown backend",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{
					Enabled:  true,
					Requests: 100,
					Window:   time.Minute,
					Strategy: "sliding_window",
					Backend:  "etcd",
				}
			},
			wantErr: true,
		},
		{
			name: "rate limit enabled with unknown strategy",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{
					Enabled:  true,
					Requests: 100,
					Window:   time.Minute,
					Strategy: "leaky_bucket",
					Backend:  "memory",
				}
			},
			wantErr: true,
		},
		{
			name: "rate limit enabled with non-positive requests",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{
					Enabled:  true,
					Requests: 0,
					Window:   time.Minute,
					Strategy: "sliding_window",
					Backend:  "memory",
				}
			},
			wantErr: true,
		},
		{
			name: "rate limit enabled and valid",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{
					Enabled:  true,
					Requests: 100,
					Window:   time.Minute,
					Strategy: "token_bucket",
					Backend:  "memory",
				}
			},
			wantErr: false,
		},
		{
			name: "rate limit disabled ignores backend",
			mutate: func(c *Config) {
				c.RateLimit = RateLimitConfig{Enabled: false, Backend: "etcd"}
			},
			wantErr: false,
		},
		{
			name:    "negative report table limit",
			mutate:  func(c *Config) { c.Report.MaxEdgesInTable = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestCacheConfig_Address(t *testing.T) {
	cfg := CacheConfig{
		Host: "redis.local",
		Port: 6379,
	}

	addr := cfg.Address()
	if addr != "redis.local:6379" {
		t.Errorf("expected 'redis.local:6379', got %s", addr)
	}
}

func TestRateLimitConfig_Address(t *testing.T) {
	cfg := RateLimitConfig{
		Host: "redis.local",
		Port: 6380,
	}

	addr := cfg.Address()
	if addr != "redis.local:6380" {
		t.Errorf("expected 'redis.local:6380', got %s", addr)
	}
}
