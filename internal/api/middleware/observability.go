package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// UnmatchedRoute labels requests no pattern matched
const UnmatchedRoute = "unmatched"

type matchedRouteKey struct{}

// matchedRoute is filled by RecordRoute once the mux has picked a pattern
type matchedRoute struct {
	pattern string
}

// RecordRoute must wrap the ServeMux directly. The mux sets Pattern on the
// request it receives, so this is the only layer that sees it; it hands the
// pattern to ObservabilityMiddleware through the request context.
func RecordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		if route, ok := r.Context().Value(matchedRouteKey{}).(*matchedRoute); ok && r.Pattern != "" {
			route.pattern = r.Pattern
		}
	})
}

// ObservabilityMiddleware adds OpenTelemetry tracing and metrics to HTTP requests
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			matched := &matchedRoute{}
			ctx = context.WithValue(ctx, matchedRouteKey{}, matched)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			req := r.WithContext(ctx)
			next.ServeHTTP(rw, req)

			route := matched.pattern
			if route == "" {
				route = UnmatchedRoute
			}
			span.SetName(route)
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rw.statusCode, time.Since(start))
			observability.SetSpanAttributes(span,
				attribute.String("http.route", route),
				attribute.Int("http.status_code", rw.statusCode),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
