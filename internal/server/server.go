// Package server реализует HTTP-сервис решателя. Он отдаёт те же
// JSON-контракты, что CLI belts и factory, плюс генерацию отчётов,
// health-пробы и метрики на отдельном порту.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"beltflow/internal/openapi"
	"beltflow/internal/report"
	"beltflow/internal/service"
	"beltflow/pkg/config"
	"beltflow/pkg/logger"
	"beltflow/pkg/metrics"
	"beltflow/pkg/ratelimit"
	"beltflow/pkg/swagger"
	"beltflow/pkg/telemetry"
)

// Server обёртка над http.Server с роутингом и жизненным циклом
type Server struct {
	cfg        *config.Config
	flows      *service.FlowService
	generators map[report.Format]report.Generator
	limiter    ratelimit.Limiter
	ready      atomic.Bool
	httpServer *http.Server
}

// New создаёт сервер с настроенным роутингом и цепочкой middleware
func New(cfg *config.Config, flows *service.FlowService) *Server {
	s := &Server{
		cfg:        cfg,
		flows:      flows,
		generators: report.Generators(cfg.Report),
	}

	if cfg.RateLimit.Enabled {
		limiter, err := ratelimit.New(ratelimit.FromConfig(&cfg.RateLimit))
		if err != nil {
			logger.Log.Warn("Failed to create rate limiter, continuing without limits", "error", err)
		} else {
			s.limiter = limiter
		}
	}

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	return s
}

// routes собирает mux и оборачивает его в middleware.
// Порядок: request id -> логирование -> метрики -> трейсинг -> rate limit -> handler.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/solve", s.handleSolve)
	mux.HandleFunc("POST /v1/factory/plan", s.handlePlan)
	mux.HandleFunc("POST /v1/reports", s.handleReport)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	// Swagger UI только для разработки
	if s.cfg.IsDevelopment() {
		swagger.RegisterRoutes(mux, nil, openapi.GetSpec())
	}

	var handler http.Handler = mux
	if s.limiter != nil {
		handler = RateLimit(s.limiter)(handler)
	}
	if s.cfg.Tracing.Enabled {
		handler = telemetry.HTTPMiddleware(handler)
	}
	handler = Instrument(handler)
	handler = Logging(handler)
	handler = RequestID(handler)

	return handler
}

// Run запускает сервер и блокируется до сигнала, отмены контекста
// или ошибки listener'а. Возвращает nil при штатной остановке.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Metrics.Enabled {
		go func() {
			logger.Log.Info("Starting metrics server",
				"port", s.cfg.Metrics.Port,
				"path", s.cfg.Metrics.Path,
			)
			if err := metrics.StartMetricsServer(s.cfg.Metrics.Port, s.cfg.Metrics.Path); err != nil &&
				!errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Log.Info("Starting HTTP server",
			"port", s.cfg.HTTP.Port,
			"environment", s.cfg.App.Environment,
			"version", s.cfg.App.Version,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	metrics.Get().SetServiceInfo(s.cfg.App.Version, s.cfg.App.Environment)
	s.ready.Store(true)

	return s.waitForShutdown(ctx, errCh)
}

func (s *Server) waitForShutdown(ctx context.Context, errCh chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-quit:
		logger.Log.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Log.Info("Context canceled, shutting down")
	}

	// Новые запросы отклоняются пробами, начатые дорабатывают
	s.ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			logger.Log.Error("Failed to close rate limiter", "error", err)
		}
	}

	logger.Log.Info("Server stopped")
	return nil
}
