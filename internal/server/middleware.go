package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"beltflow/pkg/logger"
	"beltflow/pkg/metrics"
	"beltflow/pkg/ratelimit"
)

const requestIDHeader = "X-Request-Id"

// Context keys
type contextKey string

const requestIDKey contextKey = "request_id"

// GetRequestID извлекает request_id из контекста
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestID присваивает запросу идентификатор: берёт клиентский
// X-Request-Id или генерирует новый uuid. Идентификатор попадает
// в контекст и в заголовок ответа.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		w.Header().Set(requestIDHeader, id)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// responseWriter запоминает статус и размер ответа
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Logging логирует каждый запрос со статусом и длительностью
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		logFields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", rw.bytes,
		}

		log := logger.WithRequestID(GetRequestID(r.Context()))
		if rw.status >= http.StatusInternalServerError {
			log.Error("Request failed", logFields...)
		} else {
			log.Info("Request completed", logFields...)
		}
	})
}

// Instrument записывает метрики HTTP запросов
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		metrics.Get().RecordHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rw.status), time.Since(start))
	})
}

// clientKey определяет клиента для rate limiting: заголовки прокси,
// затем адрес соединения
func clientKey(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// Первый адрес в списке - исходный клиент
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit отклоняет запросы сверх лимита со статусом 429.
// Health-пробы не ограничиваются.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
				next.ServeHTTP(w, r)
				return
			}

			key := clientKey(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// Недоступный лимитер не должен ронять запросы
				logger.WithRequestID(GetRequestID(r.Context())).Warn("Rate limiter check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				if info, err := limiter.GetInfo(r.Context(), key); err == nil {
					w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
					w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
					w.Header().Set("Retry-After", strconv.Itoa(int(time.Until(info.ResetAt).Seconds())+1))
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"status":"error","message":"rate limit exceeded"}`)); err != nil {
					return
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
