// Package main is the entry point for the beltsd daemon.
//
// beltsd serves the belt network feasibility solver over HTTP. It exposes
// the same JSON contracts as the belts and factory CLIs, plus on-demand
// report generation, health probes, and Prometheus metrics.
//
// # Service Overview
//
// The daemon exposes the following endpoints:
//   - POST /v1/solve        - Feasibility check for a belt network
//   - POST /v1/factory/plan - Two-phase factory production planning
//   - POST /v1/reports      - Solve and render an XLSX or PDF report
//   - GET  /healthz         - Liveness probe
//   - GET  /readyz          - Readiness probe
//   - GET  /metrics         - Prometheus exposition (separate metrics port)
//   - GET  /swagger/        - Swagger UI (development environment only)
//
// # Architecture
//
// The daemon reuses the CLI pipeline behind an HTTP transport layer:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    HTTP Transport Layer                     │
//	│  (internal/server)                                          │
//	│  Middleware: request id, logging, metrics, tracing,         │
//	│  rate limiting                                              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                          │
//	│  (internal/service/solver.go - FlowService)                 │
//	│  - Problem validation                                       │
//	│  - Caching logic                                            │
//	│  - Feasibility verdict and certificate assembly             │
//	├─────────────────────────────────────────────────────────────┤
//	│                     Transform Layer                         │
//	│  (internal/transform/*.go)                                  │
//	│  - Lower-bound reduction via node splitting                 │
//	│  - Flow reconstruction and min-cut certificates             │
//	├─────────────────────────────────────────────────────────────┤
//	│                     Algorithm Layer                         │
//	│  (internal/algorithms/*.go)                                 │
//	│  - Dinic, Edmonds-Karp max-flow oracles                     │
//	│  - Timeouts, iteration limits, cancellation                 │
//	├─────────────────────────────────────────────────────────────┤
//	│                       Graph Layer                           │
//	│  (internal/graph/*.go)                                      │
//	│  - ResidualGraph: core data structure                       │
//	│  - GraphPool: memory pooling                                │
//	│  - BFS, path reconstruction, min-cut reachability           │
//	└─────────────────────────────────────────────────────────────┘
//
// Factory planning (internal/factory) and report rendering
// (internal/report) sit beside the solve pipeline and share the same
// wire formats and error taxonomy.
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: BELTFLOW_)
//  2. Config files (config.yaml, configs/config.yaml, /etc/beltflow/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	BELTFLOW_APP_NAME           - Service name (default: beltflow)
//	BELTFLOW_APP_VERSION        - Service version (default: dev)
//	BELTFLOW_APP_ENVIRONMENT    - Environment: development, staging, production
//
//	# HTTP Server
//	BELTFLOW_HTTP_PORT             - HTTP server port (default: 8080)
//	BELTFLOW_HTTP_READ_TIMEOUT     - Read timeout (default: 30s)
//	BELTFLOW_HTTP_WRITE_TIMEOUT    - Write timeout (default: 30s)
//	BELTFLOW_HTTP_SHUTDOWN_TIMEOUT - Graceful shutdown grace period (default: 10s)
//	BELTFLOW_HTTP_MAX_BODY_BYTES   - Max request body size (default: 10MB)
//
//	# Logging
//	BELTFLOW_LOG_LEVEL     - Log level: debug, info, warn, error (default: info)
//	BELTFLOW_LOG_FORMAT    - Log format: json, text (default: json)
//	BELTFLOW_LOG_OUTPUT    - Output: stdout, stderr, file (default: stderr)
//	BELTFLOW_LOG_FILE_PATH - Log file path when output=file
//
//	# Solver
//	BELTFLOW_SOLVER_ALGORITHM      - Max-flow algorithm: dinic, edmonds_karp
//	BELTFLOW_SOLVER_TIMEOUT        - Per-solve deadline (default: 30s)
//	BELTFLOW_SOLVER_MAX_ITERATIONS - Iteration cap (default: 1000000)
//	BELTFLOW_SOLVER_MAX_CONCURRENT - Concurrent solve limit (default: 8)
//
//	# Caching
//	BELTFLOW_CACHE_ENABLED     - Enable result caching (default: false)
//	BELTFLOW_CACHE_DRIVER      - Cache backend: memory, redis (default: memory)
//	BELTFLOW_CACHE_HOST        - Redis host (default: localhost)
//	BELTFLOW_CACHE_PORT        - Redis port (default: 6379)
//	BELTFLOW_CACHE_DEFAULT_TTL - Cache TTL duration (default: 5m)
//
//	# Rate limiting
//	BELTFLOW_RATE_LIMIT_ENABLED    - Enable per-client limits (default: false)
//	BELTFLOW_RATE_LIMIT_REQUESTS   - Requests per window (default: 100)
//	BELTFLOW_RATE_LIMIT_WINDOW     - Window duration (default: 1m)
//	BELTFLOW_RATE_LIMIT_STRATEGY   - sliding_window or token_bucket
//	BELTFLOW_RATE_LIMIT_BACKEND    - memory or redis (default: memory)
//	BELTFLOW_RATE_LIMIT_BURST_SIZE - Extra burst for token_bucket (default: 10)
//
//	# Tracing (OpenTelemetry)
//	BELTFLOW_TRACING_ENABLED     - Enable distributed tracing (default: false)
//	BELTFLOW_TRACING_ENDPOINT    - OTLP endpoint (default: localhost:4317)
//	BELTFLOW_TRACING_SAMPLE_RATE - Sampling rate 0.0-1.0 (default: 0.1)
//
//	# Metrics (Prometheus)
//	BELTFLOW_METRICS_ENABLED   - Enable Prometheus metrics (default: true)
//	BELTFLOW_METRICS_PORT      - Metrics HTTP port (default: 9090)
//	BELTFLOW_METRICS_PATH      - Metrics endpoint path (default: /metrics)
//	BELTFLOW_METRICS_NAMESPACE - Metrics namespace (default: beltflow)
//
//	# Reports
//	BELTFLOW_REPORT_COMPANY_NAME       - Author/footer branding
//	BELTFLOW_REPORT_MAX_EDGES_IN_TABLE - Row cap for edge tables (default: 50)
//
// # Graceful Shutdown
//
// The daemon handles SIGINT and SIGTERM for graceful shutdown:
//  1. Marks /readyz as not ready (load balancers stop sending traffic)
//  2. Waits for in-flight requests to complete (up to the shutdown timeout)
//  3. Stops the HTTP server
//  4. Flushes pending telemetry spans
//
// # Observability
//
// Metrics (Prometheus, with the configured namespace):
//
//	beltflow_http_requests_total          - HTTP requests by method, path, status
//	beltflow_http_request_duration_seconds - HTTP latency histogram
//	beltflow_solve_operations_total       - Solves by algorithm and verdict
//	beltflow_solve_duration_seconds       - Solve latency histogram
//	beltflow_graph_nodes_total            - Problem size histograms
//	beltflow_certificate_size             - Infeasibility certificate sizes
//	beltflow_plan_operations_total        - Factory planning runs
//	beltflow_reports_generated_total      - Reports by format and status
//	beltflow_cache_requests_total         - Cache hits and misses
//
// Logging (structured JSON via slog):
//
//	Each request logs:
//	  - request_id: Unique identifier for correlation
//	  - method, path, status: Request routing outcome
//	  - duration_ms: Request duration in milliseconds
//
// # Error Handling
//
// Solve and plan endpoints answer with the CLI JSON bodies. Infeasibility
// is a result, not a failure: it is returned with HTTP 200 and
// status "infeasible". Error verdicts map to HTTP status codes:
//
//	200 - status "ok" or "infeasible"
//	400 - malformed JSON, missing sink, conflicting bounds, bad format
//	408 - request canceled by the client
//	422 - planner rejected an unsatisfiable constraint set
//	429 - client exceeded the configured rate limit
//	504 - solve exceeded the configured timeout or iteration cap
//	500 - internal solver or report failure
//
// # API Usage Examples
//
// Solving a feasibility problem:
//
//	curl -s -X POST localhost:8080/v1/solve -d '{
//	  "sources": {"mine": 100},
//	  "sink": "factory",
//	  "edges": [
//	    {"from": "mine", "to": "belt", "lower": 10, "upper": 60},
//	    {"from": "belt", "to": "factory", "upper": 60}
//	  ],
//	  "node_caps": {"belt": 80}
//	}'
//
// Response:
//
//	{
//	  "status": "ok",
//	  "max_flow_per_min": 60,
//	  "flows": [
//	    {"from": "belt", "to": "factory", "flow": 60},
//	    {"from": "mine", "to": "belt", "flow": 60}
//	  ]
//	}
//
// Rendering a PDF report for the same problem:
//
//	curl -s -X POST 'localhost:8080/v1/reports?format=pdf' \
//	  -d @problem.json -o report.pdf
//
// # Kubernetes Deployment
//
// The daemon is designed for Kubernetes deployment with:
//   - Liveness probe: GET /healthz on the HTTP port
//   - Readiness probe: GET /readyz on the HTTP port
//   - Metrics scraping: GET /metrics on the metrics port
//
// Example probe configuration:
//
//	livenessProbe:
//	  httpGet:
//	    path: /healthz
//	    port: 8080
//	  initialDelaySeconds: 5
//	  periodSeconds: 10
//
//	readinessProbe:
//	  httpGet:
//	    path: /readyz
//	    port: 8080
//	  initialDelaySeconds: 5
//	  periodSeconds: 5
//
// # Local Development
//
// Manual run:
//
//	go run ./cmd/beltsd
//
// With custom config:
//
//	CONFIG_PATH=./configs/local.yaml go run ./cmd/beltsd
//
// # Dependencies
//
// External services (optional):
//
//	Redis:
//	  - For distributed result caching (BELTFLOW_CACHE_DRIVER=redis)
//	  - For rate limits shared across replicas (BELTFLOW_RATE_LIMIT_BACKEND=redis)
//
//	Jaeger/OTLP Collector:
//	  - For distributed tracing (BELTFLOW_TRACING_ENABLED=true)
//
// beltsd has no required downstream dependencies: with caching and
// tracing disabled it runs fully self-contained.
package main

import (
	"context"
	"log"
	"time"

	"beltflow/internal/server"
	"beltflow/internal/service"
	"beltflow/pkg/cache"
	"beltflow/pkg/config"
	"beltflow/pkg/logger"
	"beltflow/pkg/metrics"
	"beltflow/pkg/telemetry"
)

func main() {
	// =========================================================================
	// Configuration Loading
	// =========================================================================
	//
	// config.Load reads configuration with the following priority:
	//   1. Environment variables (BELTFLOW_* prefix)
	//   2. Config files (config.yaml in standard locations, or CONFIG_PATH)
	//   3. Default values from pkg/config/loader.go
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	//
	// Supported outputs:
	//   - stdout/stderr: Direct console output
	//   - file: File output with automatic rotation (via lumberjack)
	//
	// Log rotation settings (when output=file):
	//   - MaxSize: Maximum size in MB before rotation
	//   - MaxBackups: Number of old files to retain
	//   - MaxAge: Maximum days to retain old files
	//   - Compress: Whether to gzip rotated files
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	// =========================================================================
	// Telemetry Initialization (OpenTelemetry)
	// =========================================================================
	//
	// When enabled, initializes the OpenTelemetry trace provider. Traces are
	// exported to the configured OTLP endpoint (e.g., Jaeger).
	//
	// Shutdown flushes pending spans before the process exits. A failed
	// telemetry init is logged and the daemon continues without tracing.
	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("Failed to init telemetry", "error", err)
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tp.Shutdown(shutdownCtx); err != nil {
					logger.Log.Warn("Failed to shutdown telemetry", "error", err)
				}
			}()
			logger.Log.Info("Telemetry initialized", "endpoint", cfg.Tracing.Endpoint)
		}
	}

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// Initializes Prometheus metrics with the configured namespace. The
	// metrics server itself is started by server.Run() on the metrics port.
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// The solver cache stores verdicts to avoid recomputing identical
	// problems. Cache keys are derived from a canonical problem hash plus
	// the algorithm name.
	//
	// Supported backends:
	//   - memory: In-process LRU cache (fast, not shared between instances)
	//   - redis: Distributed cache (shared, requires Redis server)
	//
	// The cache is optional and the daemon continues to function if cache
	// initialization fails.
	var solverCache *cache.SolverCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			solverCache = cache.NewSolverCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Solver cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// Service and Server Creation
	// =========================================================================
	//
	// FlowService runs the shared solve pipeline: validation, lower-bound
	// transform, pooled max-flow oracle, verdict and certificate assembly.
	// The HTTP server wraps it with routing, middleware, and report
	// generation.
	flows := service.NewFlowService(cfg.Solver, solverCache)
	srv := server.New(cfg, flows)

	// =========================================================================
	// Server Startup
	// =========================================================================
	//
	// Logs startup information for operational visibility: confirming a
	// successful start, verifying configuration, and correlating with
	// deployment events.
	logger.Info("Starting beltsd",
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"algorithm", flows.Algorithm(),
		"cache_enabled", solverCache != nil,
		"rate_limit_enabled", cfg.RateLimit.Enabled,
	)

	// =========================================================================
	// Run Server (Blocking)
	// =========================================================================
	//
	// srv.Run() performs the following:
	//   1. Starts the metrics HTTP server (if enabled)
	//   2. Binds to the HTTP port
	//   3. Marks /readyz as ready
	//   4. Blocks until a shutdown signal is received
	//   5. Performs graceful shutdown within the configured grace period
	//
	// Returns nil on clean shutdown, an error if the server fails to start.
	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server failed", "error", err)
	}
}
