package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"
)

// Environment variables
const (
	EnvIntegrationTests = "INTEGRATION_TESTS"
	EnvRedisAddr        = "REDIS_TEST_ADDR"
)

// SkipIfNotIntegration пропускает тест если не integration mode
func SkipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv(EnvIntegrationTests) != "1" {
		t.Skip("skipping integration test; set INTEGRATION_TESTS=1 to run")
	}
}

// RequireRedis проверяет доступность Redis и возвращает адрес
func RequireRedis(t *testing.T) string {
	t.Helper()
	SkipIfNotIntegration(t)

	addr := os.Getenv(EnvRedisAddr)
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	// Проверяем доступность с контекстом
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	conn.Close()

	return addr
}

// WaitForHTTP опрашивает URL до первого ответа 200 или истечения срока.
// Используется для ожидания готовности демона, запущенного в тесте.
func WaitForHTTP(t *testing.T, url string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: time.Second}

	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
		if err != nil {
			t.Fatalf("failed to build probe request: %v", err)
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("%s did not become ready within %v", url, timeout)
}

// Context возвращает контекст с таймаутом для тестов
func Context(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// ContextWithDuration возвращает контекст с указанным таймаутом
func ContextWithDuration(t *testing.T, d time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), d)
}

// Cleanup регистрирует функцию очистки
func Cleanup(t *testing.T, fn func()) {
	t.Helper()
	t.Cleanup(fn)
}

// RandomString генерирует случайную строку заданной длины
func RandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "fallback" + fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)[:n]
}

// UniqueKey генерирует уникальный ключ для теста
func UniqueKey(t *testing.T, prefix string) string {
	t.Helper()
	return fmt.Sprintf("%s:%s:%s", prefix, t.Name(), RandomString(8))
}

// FreePort находит свободный порт
func FreePort(t *testing.T) int {
	t.Helper()

	var lc net.ListenConfig
	lis, err := lc.Listen(context.Background(), "tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer lis.Close()
	return lis.Addr().(*net.TCPAddr).Port
}
