package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	"github.com/zatekoja/dentalbooking/backend/internal/infrastructure/observability"
)

// heartbeatInterval keeps idle streams open through proxies
const heartbeatInterval = 30 * time.Second

// SSEHandler streams booking activity as Server-Sent Events
type SSEHandler struct {
	subscriber providers.EventSubscriber
	heartbeat  time.Duration

	mu      sync.Mutex
	clients map[string]int
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(subscriber providers.EventSubscriber) *SSEHandler {
	return &SSEHandler{
		subscriber: subscriber,
		heartbeat:  heartbeatInterval,
		clients:    make(map[string]int),
	}
}

// StreamFacilityBookings handles GET /api/stream/facilities/{id}/bookings
func (h *SSEHandler) StreamFacilityBookings(w http.ResponseWriter, r *http.Request) {
	facilityID := strings.TrimSpace(r.PathValue("id"))
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}
	h.stream(w, r, providers.GetFacilityChannel(facilityID), map[string]any{"facility_id": facilityID})
}

// StreamAllBookings handles GET /api/stream/bookings
func (h *SSEHandler) StreamAllBookings(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelBookings, map[string]any{})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]any) {
	logger := observability.LoggerFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := h.subscriber.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe")
		respondWithError(w, http.StatusServiceUnavailable, "booking stream unavailable")
		return
	}

	h.register(channel)
	defer h.unregister(channel)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hello["timestamp"] = time.Now()
	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("channel", channel).Msg("client disconnected from booking stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]any{"timestamp": time.Now()})
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) register(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]++
}

func (h *SSEHandler) unregister(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[channel]--
	if h.clients[channel] <= 0 {
		delete(h.clients, channel)
	}
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

// ClientCount returns the number of connected stream clients
func (h *SSEHandler) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}
