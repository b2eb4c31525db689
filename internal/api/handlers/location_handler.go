package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
)

// LocationStore remembers the last location a client shared
type LocationStore interface {
	Remember(ctx context.Context, clientID string, point entities.Coordinates) error
	Recall(ctx context.Context, clientID string) (*entities.Coordinates, error)
	Forget(ctx context.Context, clientID string) error
}

// LocationHandler serves the last-known location of a client
type LocationHandler struct {
	locations LocationStore
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(locations LocationStore) *LocationHandler {
	return &LocationHandler{locations: locations}
}

func clientIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	clientID := strings.TrimSpace(r.Header.Get(ClientIDHeader))
	if clientID == "" {
		respondWithError(w, http.StatusBadRequest, ClientIDHeader+" header is required")
		return "", false
	}
	return clientID, true
}

// GetLocation handles GET /api/location
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFrom(w, r)
	if !ok {
		return
	}

	point, err := h.locations.Recall(r.Context(), clientID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if point == nil {
		respondWithError(w, http.StatusNotFound, "no location remembered")
		return
	}
	respondWithJSON(w, http.StatusOK, point)
}

// PutLocation handles PUT /api/location
func (h *LocationHandler) PutLocation(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFrom(w, r)
	if !ok {
		return
	}

	var point entities.Coordinates
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.locations.Remember(r.Context(), clientID, point); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, point)
}

// DeleteLocation handles DELETE /api/location
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	clientID, ok := clientIDFrom(w, r)
	if !ok {
		return
	}
	if err := h.locations.Forget(r.Context(), clientID); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
