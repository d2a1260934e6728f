package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// HTTP метрики
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Бизнес-метрики
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	MaxFlowValue         *prometheus.GaugeVec
	GraphNodesTotal      *prometheus.HistogramVec
	GraphEdgesTotal      *prometheus.HistogramVec
	CertificateSize      *prometheus.HistogramVec
	PlanOperationsTotal  *prometheus.CounterVec
	PlanDuration         prometheus.Histogram
	ReportsGeneratedTotal *prometheus.CounterVec

	// Кэш
	CacheRequestsTotal *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		// HTTP метрики
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Бизнес-метрики
		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of feasibility checks",
			},
			[]string{"algorithm", "verdict"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of feasibility checks",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"algorithm"},
		),

		MaxFlowValue: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "max_flow_value",
				Help:      "Last calculated max flow value",
			},
			[]string{"algorithm"},
		),

		GraphNodesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_nodes_total",
				Help:      "Number of nodes in processed graphs",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"operation"},
		),

		GraphEdgesTotal: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_edges_total",
				Help:      "Number of edges in processed graphs",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
			[]string{"operation"},
		),

		CertificateSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "certificate_size",
				Help:      "Size of infeasibility certificates",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
			},
			[]string{"part"},
		),

		PlanOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_operations_total",
				Help:      "Total number of factory planning runs",
			},
			[]string{"status"},
		),

		PlanDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "plan_duration_seconds",
				Help:      "Duration of factory planning runs",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),

		ReportsGeneratedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reports_generated_total",
				Help:      "Total number of generated reports",
			},
			[]string{"format", "status"},
		),

		// Кэш
		CacheRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_requests_total",
				Help:      "Cache lookups by result",
			},
			[]string{"result"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("beltflow", "")
	}
	return defaultMetrics
}

// RecordHTTPRequest записывает метрики HTTP запроса
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSolveOperation записывает метрики проверки осуществимости
func (m *Metrics) RecordSolveOperation(algorithm, verdict string, duration time.Duration, maxFlow float64) {
	m.SolveOperationsTotal.WithLabelValues(algorithm, verdict).Inc()
	m.SolveDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
	m.MaxFlowValue.WithLabelValues(algorithm).Set(maxFlow)
}

// RecordGraphSize записывает размер графа
func (m *Metrics) RecordGraphSize(operation string, nodes, edges int) {
	m.GraphNodesTotal.WithLabelValues(operation).Observe(float64(nodes))
	m.GraphEdgesTotal.WithLabelValues(operation).Observe(float64(edges))
}

// RecordCertificate записывает размеры сертификата неосуществимости
func (m *Metrics) RecordCertificate(tightNodes, tightEdges int) {
	m.CertificateSize.WithLabelValues("tight_nodes").Observe(float64(tightNodes))
	m.CertificateSize.WithLabelValues("tight_edges").Observe(float64(tightEdges))
}

// RecordPlanOperation записывает метрики планирования фабрики
func (m *Metrics) RecordPlanOperation(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	m.PlanOperationsTotal.WithLabelValues(status).Inc()
	m.PlanDuration.Observe(duration.Seconds())
}

// RecordReport записывает метрики генерации отчёта
func (m *Metrics) RecordReport(format string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ReportsGeneratedTotal.WithLabelValues(format, status).Inc()
}

// RecordCacheHit записывает попадание или промах кэша
func (m *Metrics) RecordCacheHit(hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	m.CacheRequestsTotal.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
