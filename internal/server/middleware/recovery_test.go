package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/pkg/api"
)

func TestRecoveryMiddleware_PassesThrough(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RecoveryMiddleware(logger)(statusHandler(http.StatusOK, "fine"))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}

func TestRecoveryMiddleware_PanicValues(t *testing.T) {
	tests := []struct {
		value any
		name  string
	}{
		{name: "string", value: "quantity overflow"},
		{name: "error", value: errors.New("nil map write")},
		{name: "struct", value: struct{ sku string }{"SKU-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/inventory", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, "Internal Server Error", resp.Error)
			assert.Equal(t, "internal server error", resp.Message)
		})
	}
}

func TestRecoveryMiddleware_DoesNotLeakDetails(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("db password is hunter2")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/inventory", nil))

	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestRecoveryMiddleware_RepanicsAbortHandler(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))
	})
	assert.Empty(t, logBuf.String())
}

func TestRecoveryMiddleware_LogsStackTrace(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("broken quantity handler")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/42/quantity", nil)
	req.RemoteAddr = "10.1.2.3:4000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := logBuf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "Panic recovered")
	assert.Contains(t, out, "broken quantity handler")
	assert.Contains(t, out, "path=/api/inventory/42/quantity")
	assert.Contains(t, out, "remote_addr=10.1.2.3:4000")
	assert.Contains(t, out, "goroutine")
}

// Порядок как в server.routes: logging снаружи, recovery внутри
func TestRecoveryMiddleware_UnderLogging(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	handler := LoggingMiddleware(logger)(RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/inventory/7", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := logBuf.String()
	assert.Contains(t, out, "Panic recovered")
	assert.Contains(t, out, `msg="HTTP request"`)
	assert.Contains(t, out, "status=500")
}
