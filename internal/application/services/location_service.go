package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/zatekoja/dentalbooking/backend/internal/domain/entities"
	"github.com/zatekoja/dentalbooking/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/dentalbooking/backend/pkg/errors"
)

// LocationService remembers the last coordinates a client shared
type LocationService struct {
	cache      providers.CacheProvider
	ttlSeconds int
}

// NewLocationService creates a new location service
func NewLocationService(cache providers.CacheProvider, ttlSeconds int) *LocationService {
	return &LocationService{cache: cache, ttlSeconds: ttlSeconds}
}

func locationKey(clientID string) string {
	return "location:" + clientID
}

// Remember stores coordinates for the client
func (s *LocationService) Remember(ctx context.Context, clientID string, point entities.Coordinates) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return apperrors.NewValidationError("client id is required")
	}
	if !point.Valid() {
		return apperrors.NewValidationError("invalid coordinates",
			apperrors.FieldError{Field: "lat", Message: "lat must be between -90 and 90"},
			apperrors.FieldError{Field: "lng", Message: "lng must be between -180 and 180"},
		)
	}

	data, err := json.Marshal(point)
	if err != nil {
		return apperrors.NewInternalError("failed to encode location", err)
	}
	if err := s.cache.Set(ctx, locationKey(clientID), data, s.ttlSeconds); err != nil {
		return apperrors.NewInternalError("failed to store location", err)
	}
	return nil
}

// Recall returns the remembered coordinates, or nil when none are stored
func (s *LocationService) Recall(ctx context.Context, clientID string) (*entities.Coordinates, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, nil
	}

	data, err := s.cache.Get(ctx, locationKey(clientID))
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read location", err)
	}

	var point entities.Coordinates
	if err := json.Unmarshal(data, &point); err != nil || !point.Valid() {
		return nil, nil
	}
	return &point, nil
}

// Forget deletes the remembered coordinates
func (s *LocationService) Forget(ctx context.Context, clientID string) error {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return apperrors.NewValidationError("client id is required")
	}
	if err := s.cache.Delete(ctx, locationKey(clientID)); err != nil {
		return apperrors.NewInternalError("failed to delete location", err)
	}
	return nil
}
