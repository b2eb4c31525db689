package routes

import (
	"net/http"

	"github.com/zatekoja/dentalbooking/backend/internal/api/handlers"
	"github.com/zatekoja/dentalbooking/backend/internal/api/middleware"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	facilityHandler *handlers.FacilityHandler
	bookingHandler  *handlers.BookingHandler
	locationHandler *handlers.LocationHandler
	sseHandler      *handlers.SSEHandler

	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	metrics        *observability.Metrics
}

// NewRouter creates a new router. sseHandler may be nil when no event
// backend supports subscriptions.
func NewRouter(
	facilityHandler *handlers.FacilityHandler,
	bookingHandler *handlers.BookingHandler,
	locationHandler *handlers.LocationHandler,
	sseHandler *handlers.SSEHandler,
	rateLimiter *middleware.RateLimiter,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		facilityHandler: facilityHandler,
		bookingHandler:  bookingHandler,
		locationHandler: locationHandler,
		sseHandler:      sseHandler,
		rateLimiter:     rateLimiter,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// limited wraps booking submissions with the per-client rate limit
func (r *Router) limited(next http.HandlerFunc) http.HandlerFunc {
	if r.rateLimiter == nil {
		return next
	}
	return r.rateLimiter.Limit(next)
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Facility endpoints
	r.mux.HandleFunc("GET /api/facilities", r.facilityHandler.ListFacilities)
	r.mux.HandleFunc("GET /api/facilities/{id}", r.facilityHandler.GetFacility)
	r.mux.HandleFunc("GET /api/facilities/{id}/departments", r.facilityHandler.ListDepartments)
	r.mux.HandleFunc("GET /api/facilities/{id}/doctors", r.facilityHandler.ListDoctors)

	// Booking endpoints
	r.mux.HandleFunc("POST /api/facilities/{id}/bookings", r.limited(r.bookingHandler.CreateBooking))
	r.mux.HandleFunc("POST /api/booking-sessions", r.bookingHandler.OpenSession)
	r.mux.HandleFunc("GET /api/booking-sessions/{id}", r.bookingHandler.GetSession)
	r.mux.HandleFunc("PATCH /api/booking-sessions/{id}", r.bookingHandler.UpdateField)
	r.mux.HandleFunc("POST /api/booking-sessions/{id}/submit", r.limited(r.bookingHandler.SubmitSession))
	r.mux.HandleFunc("DELETE /api/booking-sessions/{id}", r.bookingHandler.CloseSession)

	// Last-known location
	r.mux.HandleFunc("GET /api/location", r.locationHandler.GetLocation)
	r.mux.HandleFunc("PUT /api/location", r.locationHandler.PutLocation)
	r.mux.HandleFunc("DELETE /api/location", r.locationHandler.DeleteLocation)

	// Booking activity streams
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/bookings", r.sseHandler.StreamAllBookings)
		r.mux.HandleFunc("GET /api/stream/facilities/{id}/bookings", r.sseHandler.StreamFacilityBookings)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflight requests never reach the mux.
	var handler http.Handler = r.mux
	handler = middleware.RecordRoute(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.NoStore(handler)
	handler = middleware.Compression(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
