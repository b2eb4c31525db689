package middleware

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func TestRateLimiter_Limit(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	handler := limiter.Limit(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/facilities/1/bookings", nil)
		req.RemoteAddr = ip + ":5555"
		w := httptest.NewRecorder()
		handler(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2"))

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusCreated, send("10.0.0.1"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.4:1234"
	assert.Equal(t, "192.168.1.4", ClientIP(req))

	req.Header.Set("X-Real-IP", "10.1.1.1")
	assert.Equal(t, "10.1.1.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://book.example.com"})(http.HandlerFunc(okHandler))

	t.Run("allowed origin is echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/facilities", nil)
		req.Header.Set("Origin", "https://book.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "https://book.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/facilities", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/booking-sessions", nil)
		req.Header.Set("Origin", "https://book.example.com")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Client-ID")
	})
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	var seen string
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
}

func TestRecordRoute_ReportsPatternThroughLogging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/facilities/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	var reported *matchedRoute
	capture := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reported = &matchedRoute{}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), matchedRouteKey{}, reported)))
		})
	}

	// LoggingMiddleware copies the request, so the outer layer never sees r.Pattern
	handler := capture(LoggingMiddleware(RecordRoute(mux)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/facilities/42", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, reported)
	assert.Equal(t, "GET /api/facilities/{id}", reported.pattern)
}

func TestCompression(t *testing.T) {
	handler := Compression(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/facilities", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestCompression_SkipsEventStreams(t *testing.T) {
	handler := Compression(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/bookings", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestNoStore(t *testing.T) {
	handler := NoStore(http.HandlerFunc(okHandler))

	for path, want := range map[string]string{
		"/api/booking-sessions/abc":  "no-store",
		"/api/facilities/1/bookings": "no-store",
		"/api/location":              "no-store",
		"/api/facilities":            "private, no-cache",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get("Cache-Control"), path)
	}
}
